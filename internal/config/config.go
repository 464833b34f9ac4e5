package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SamplerStatic = "static"
	SamplerReplay = "replay"
)

type Config struct {
	APIBaseURL   string
	APIKey       string
	Cadence      time.Duration
	RadiusMeters float64
	Port         string

	Sampler          string
	StaticLat        float64
	StaticLon        float64
	StaticPermission string
	ReplayPath       string

	DBPath      string
	DatabaseURL string
	RabbitMQURL string
}

// LoadDotEnv reads .env files into the process environment. A missing file is not an error.
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
}

// Load reads the configuration from the environment, applying defaults.
func Load() (*Config, error) {
	cadenceMS, err := getInt("CADENCE_MS", 2000)
	if err != nil {
		return nil, err
	}
	radius, err := getFloat("RADIUS_METERS", 100)
	if err != nil {
		return nil, err
	}
	lat, err := getFloat("STATIC_LAT", 0)
	if err != nil {
		return nil, err
	}
	lon, err := getFloat("STATIC_LON", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		APIBaseURL:       Get("API_BASE_URL", "https://comp2140.uqcloud.net/api"),
		APIKey:           os.Getenv("API_KEY"),
		Cadence:          time.Duration(cadenceMS) * time.Millisecond,
		RadiusMeters:     radius,
		Port:             Get("PORT", "8080"),
		Sampler:          strings.ToLower(Get("SAMPLER", SamplerStatic)),
		StaticLat:        lat,
		StaticLon:        lon,
		StaticPermission: strings.ToLower(Get("STATIC_PERMISSION", "granted")),
		ReplayPath:       os.Getenv("REPLAY_PATH"),
		DBPath:           Get("DB_PATH", "data/nearby.db"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RabbitMQURL:      os.Getenv("RABBITMQ_URL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("config: API_KEY is required")
	}
	if c.Cadence <= 0 {
		return fmt.Errorf("config: CADENCE_MS must be positive, got %d", c.Cadence.Milliseconds())
	}
	if c.RadiusMeters <= 0 {
		return fmt.Errorf("config: RADIUS_METERS must be positive, got %v", c.RadiusMeters)
	}

	switch c.Sampler {
	case SamplerStatic:
		if c.StaticPermission != "granted" && c.StaticPermission != "denied" {
			return fmt.Errorf("config: STATIC_PERMISSION must be granted or denied, got %q", c.StaticPermission)
		}
	case SamplerReplay:
		if strings.TrimSpace(c.ReplayPath) == "" {
			return errors.New("config: REPLAY_PATH is required when SAMPLER=replay")
		}
	default:
		return fmt.Errorf("config: unknown SAMPLER %q", c.Sampler)
	}

	return nil
}

// UsePostgres reports whether verdict history goes to Postgres instead of SQLite.
func (c *Config) UsePostgres() bool {
	return strings.TrimSpace(c.DatabaseURL) != ""
}

func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}
