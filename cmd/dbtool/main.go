package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"music-nearby/internal/adapters/repositories"
	"music-nearby/internal/config"
	"music-nearby/internal/platform/db"
	"music-nearby/internal/ports"
	"os"
	"strings"
	"time"
)

func main() {
	config.LoadDotEnv()

	sqlitePath := flag.String("sqlite", "", "initialise this SQLite file instead of DATABASE_URL")
	recent := flag.Int("recent", 0, "print the N most recent verdict transitions after initialising")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, history, err := open(ctx, *sqlitePath)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if *recent > 0 {
		if err := printRecent(ctx, history, *recent); err != nil {
			log.Fatal(err)
		}
	}
}

func open(ctx context.Context, sqlitePath string) (*sql.DB, ports.VerdictLog, error) {
	if sqlitePath != "" {
		conn, err := db.OpenSQLite(sqlitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Println("Initializing sqlite schema...")
		if err := repositories.InitSchema(ctx, conn); err != nil {
			return nil, nil, fmt.Errorf("schema initialization failed: %w", err)
		}
		log.Println("Schema ready.")
		return conn, repositories.NewSqliteVerdictLog(conn), nil
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is required (or pass -sqlite)")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		return nil, nil, err
	}
	log.Println("Initializing postgres schema...")
	if err := repositories.InitPostgresSchema(ctx, conn); err != nil {
		return nil, nil, fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Println("Schema ready.")
	return conn, repositories.NewSQLVerdictLog(conn), nil
}

func printRecent(ctx context.Context, history ports.VerdictLog, n int) error {
	transitions, err := history.Recent(ctx, n)
	if err != nil {
		return err
	}
	for _, t := range transitions {
		pos := "-"
		if t.Position != nil {
			pos = t.Position.String()
		}
		fmt.Printf("%s %s -> %s at %s\n", t.OccurredAt.Format(time.RFC3339), t.From, t.To, pos)
	}
	return nil
}
