package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the SQLite database schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	createVerdictLogQuery := `
	CREATE TABLE IF NOT EXISTS verdict_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		occurred_at INTEGER NOT NULL,
		from_location_id INTEGER,
		to_location_id INTEGER,
		latitude REAL,
		longitude REAL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_verdict_log_occurred_at
	ON verdict_log(occurred_at);
	`

	return execSchema(ctx, db, "init schema", createVerdictLogQuery, createIndexQuery)
}

// Initialize the Postgres database schema.
func InitPostgresSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init postgres schema: DB is nil")
	}

	createVerdictLogQuery := `
	CREATE TABLE IF NOT EXISTS verdict_log (
		id BIGSERIAL PRIMARY KEY,
		occurred_at TIMESTAMPTZ NOT NULL,
		from_location_id INTEGER,
		to_location_id INTEGER,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_verdict_log_occurred_at
	ON verdict_log(occurred_at DESC);
	`

	return execSchema(ctx, db, "init postgres schema", createVerdictLogQuery, createIndexQuery)
}

func execSchema(ctx context.Context, db *sql.DB, op string, statements ...string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: exec statement #%d: %w", op, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit tx: %w", op, err)
	}

	return nil
}
