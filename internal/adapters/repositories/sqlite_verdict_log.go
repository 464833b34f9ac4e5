package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"music-nearby/internal/domain"
	"music-nearby/internal/platform/obs"
	"time"
)

// SQLite-backed implementation of the VerdictLog port.
// Timestamps are stored as Unix nanoseconds in UTC.
type SqliteVerdictLog struct{ DB *sql.DB }

func NewSqliteVerdictLog(db *sql.DB) *SqliteVerdictLog {
	return &SqliteVerdictLog{DB: db}
}

// Record one verdict transition.
func (s *SqliteVerdictLog) Append(ctx context.Context, t domain.Transition) (err error) {
	defer obs.Time(ctx, "verdictlog.sqlite.Append")(&err)

	if s.DB == nil {
		return errors.New("sqlite verdict log: DB is nil")
	}

	lat, lon := positionColumns(t.Position)

	query := `
	INSERT INTO verdict_log (
		occurred_at,
		from_location_id,
		to_location_id,
		latitude,
		longitude
	)
	VALUES (?, ?, ?, ?, ?);
	`
	_, err = s.DB.ExecContext(ctx, query,
		t.OccurredAt.UTC().UnixNano(),
		verdictColumn(t.From),
		verdictColumn(t.To),
		lat,
		lon,
	)
	if err != nil {
		return fmt.Errorf("append verdict: insert verdict_log: %w", err)
	}

	return nil
}

// Return the newest transitions first.
func (s *SqliteVerdictLog) Recent(ctx context.Context, limit int) ([]domain.Transition, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite verdict log: DB is nil")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("recent verdicts: limit must be positive, got %d", limit)
	}

	query := `
	SELECT
		occurred_at,
		from_location_id,
		to_location_id,
		latitude,
		longitude
	FROM verdict_log
	ORDER BY occurred_at DESC, id DESC
	LIMIT ?;
	`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("recent verdicts: query verdict_log table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Transition, 0, limit)
	for rows.Next() {
		var occurred int64
		var from, to sql.NullInt64
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&occurred, &from, &to, &lat, &lon); err != nil {
			return nil, fmt.Errorf("recent verdicts: scan row: %w", err)
		}
		out = append(out, domain.Transition{
			From:       verdictFromColumn(from),
			To:         verdictFromColumn(to),
			Position:   positionFromColumns(lat, lon),
			OccurredAt: time.Unix(0, occurred).UTC(),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recent verdicts: row iteration: %w", err)
	}

	return out, nil
}
