package repositories

import (
	"database/sql"
	"music-nearby/internal/domain"
)

func verdictColumn(v domain.Verdict) sql.NullInt64 {
	id, near := v.IsNear()
	return sql.NullInt64{Int64: int64(id), Valid: near}
}

func verdictFromColumn(c sql.NullInt64) domain.Verdict {
	if !c.Valid {
		return domain.NotNear
	}
	return domain.Near(int(c.Int64))
}

func positionColumns(p *domain.Coordinate) (lat, lon sql.NullFloat64) {
	if p == nil {
		return lat, lon
	}
	return sql.NullFloat64{Float64: p.Latitude, Valid: true},
		sql.NullFloat64{Float64: p.Longitude, Valid: true}
}

func positionFromColumns(lat, lon sql.NullFloat64) *domain.Coordinate {
	if !lat.Valid || !lon.Valid {
		return nil
	}
	return &domain.Coordinate{Latitude: lat.Float64, Longitude: lon.Float64}
}
