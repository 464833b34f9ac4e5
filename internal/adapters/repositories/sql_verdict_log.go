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

// SQLVerdictLog is the Postgres-backed VerdictLog.
type SQLVerdictLog struct {
	DB *sql.DB
}

func NewSQLVerdictLog(db *sql.DB) *SQLVerdictLog {
	return &SQLVerdictLog{DB: db}
}

func (s *SQLVerdictLog) Append(ctx context.Context, t domain.Transition) (err error) {
	defer obs.Time(ctx, "verdictlog.sql.Append")(&err)

	if s.DB == nil {
		return errors.New("verdict log: db is nil")
	}

	lat, lon := positionColumns(t.Position)

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO verdict_log (occurred_at, from_location_id, to_location_id, latitude, longitude)
	VALUES ($1, $2, $3, $4, $5);
	`, t.OccurredAt.UTC(), verdictColumn(t.From), verdictColumn(t.To), lat, lon)
	if err != nil {
		return fmt.Errorf("append verdict: insert verdict_log: %w", err)
	}

	return nil
}

func (s *SQLVerdictLog) Recent(ctx context.Context, limit int) (_ []domain.Transition, err error) {
	defer obs.Time(ctx, "verdictlog.sql.Recent")(&err)

	if s.DB == nil {
		return nil, errors.New("verdict log: db is nil")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("recent verdicts: limit must be positive, got %d", limit)
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT occurred_at, from_location_id, to_location_id, latitude, longitude
	FROM verdict_log
	ORDER BY occurred_at DESC, id DESC
	LIMIT $1;
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent verdicts: query verdict_log table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Transition, 0, limit)
	for rows.Next() {
		var occurred time.Time
		var from, to sql.NullInt64
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&occurred, &from, &to, &lat, &lon); err != nil {
			return nil, fmt.Errorf("recent verdicts: scan rows: %w", err)
		}
		out = append(out, domain.Transition{
			From:       verdictFromColumn(from),
			To:         verdictFromColumn(to),
			Position:   positionFromColumns(lat, lon),
			OccurredAt: occurred.UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recent verdicts: row iteration: %w", err)
	}

	return out, nil
}
