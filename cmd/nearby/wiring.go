package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"music-nearby/internal/adapters/events"
	"music-nearby/internal/adapters/geolocation"
	"music-nearby/internal/adapters/remote"
	"music-nearby/internal/adapters/repositories"
	"music-nearby/internal/config"
	"music-nearby/internal/domain"
	"music-nearby/internal/platform/db"
	"music-nearby/internal/ports"
	"music-nearby/internal/services"
	"os"
	"path/filepath"
	"time"
)

func loadConfig(f *flags) (*config.Config, error) {
	config.LoadDotEnv(f.envFile)

	if f.sampler != "" {
		_ = os.Setenv("SAMPLER", f.sampler)
	}
	if f.replay != "" {
		_ = os.Setenv("REPLAY_PATH", f.replay)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if f.cadence > 0 {
		cfg.Cadence = time.Duration(f.cadence) * time.Millisecond
	}
	if f.radius > 0 {
		cfg.RadiusMeters = f.radius
	}
	if f.port != "" {
		cfg.Port = f.port
	}
	if len(f.staticAt) > 0 {
		if len(f.staticAt) != 2 {
			return nil, fmt.Errorf("--at expects lat,lon, got %v", f.staticAt)
		}
		cfg.StaticLat, cfg.StaticLon = f.staticAt[0], f.staticAt[1]
	}

	return cfg, cfg.Validate()
}

func newSampler(cfg *config.Config) (ports.LocationSampler, error) {
	switch cfg.Sampler {
	case config.SamplerReplay:
		track, err := geolocation.LoadTrack(cfg.ReplayPath)
		if err != nil {
			return nil, err
		}
		return geolocation.NewReplaySampler(track), nil
	default:
		perm := domain.PermissionGranted
		if cfg.StaticPermission == "denied" {
			perm = domain.PermissionDenied
		}
		return geolocation.NewStaticSampler(domain.Coordinate{Latitude: cfg.StaticLat, Longitude: cfg.StaticLon}, perm)
	}
}

// newEngine builds the remote client and the proximity engine that polls it.
func newEngine(cfg *config.Config) (*remote.Client, *services.ProximityEngine, error) {
	client, err := remote.NewClient(cfg.APIBaseURL, cfg.APIKey)
	if err != nil {
		return nil, nil, err
	}

	sampler, err := newSampler(cfg)
	if err != nil {
		return nil, nil, err
	}

	engine, err := services.NewProximityEngine(sampler, client, cfg.RadiusMeters)
	if err != nil {
		return nil, nil, err
	}
	return client, engine, nil
}

// openHistory opens Postgres when DATABASE_URL is set and a local SQLite file otherwise,
// making sure the schema exists.
func openHistory(ctx context.Context, cfg *config.Config) (ports.VerdictLog, *sql.DB, error) {
	if cfg.UsePostgres() {
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := repositories.InitPostgresSchema(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		log.Printf("verdict history store=postgres")
		return repositories.NewSQLVerdictLog(conn), conn, nil
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("open history: create %q: %w", dir, err)
		}
	}
	conn, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	if err := repositories.InitSchema(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	log.Printf("verdict history store=sqlite path=%s", cfg.DBPath)
	return repositories.NewSqliteVerdictLog(conn), conn, nil
}

// openPublisher connects to RabbitMQ when RABBITMQ_URL is set. The returned func
// releases the broker connection.
func openPublisher(cfg *config.Config) (ports.TransitionPublisher, func(), error) {
	if cfg.RabbitMQURL == "" {
		log.Printf("transition events disabled (RABBITMQ_URL not set)")
		return events.NopPublisher{}, func() {}, nil
	}

	conn, err := events.Dial(cfg.RabbitMQURL)
	if err != nil {
		return nil, nil, err
	}
	pub, err := events.NewRabbitPublisher(conn)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	log.Printf("transition events exchange=%s", events.ExchangeName)
	return pub, func() {
		_ = pub.Close()
		_ = conn.Close()
	}, nil
}

// recordTransitions stores and publishes every verdict change. Failures are logged and
// never reach the engine.
func recordTransitions(history ports.VerdictLog, pub ports.TransitionPublisher) services.TransitionHook {
	return func(ctx context.Context, t domain.Transition) {
		ctx = context.WithoutCancel(ctx)
		if err := history.Append(ctx, t); err != nil {
			log.Printf("record transition failed: %v", err)
		}
		if err := pub.PublishTransition(ctx, t); err != nil {
			log.Printf("publish transition failed: %v", err)
		}
	}
}
