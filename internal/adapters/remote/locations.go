package remote

import (
	"context"
	"fmt"
	"log"
	"music-nearby/internal/domain"
	"music-nearby/internal/platform/obs"
)

func (r locationRecord) toDomain() (domain.Location, error) {
	if r.ID <= 0 {
		return domain.Location{}, fmt.Errorf("location %q has no usable id", r.Name)
	}
	if !r.Latitude.valid || !r.Longitude.valid {
		return domain.Location{}, fmt.Errorf("%w: location %d has no numeric coordinates", domain.ErrInvalidCoordinate, r.ID)
	}

	c := domain.Coordinate{Latitude: r.Latitude.value, Longitude: r.Longitude.value}
	if err := c.Validate(); err != nil {
		return domain.Location{}, fmt.Errorf("location %d: %w", r.ID, err)
	}

	return domain.Location{ID: int(r.ID), Name: r.Name, Coordinate: c}, nil
}

// ListLocations returns every location in the order the service returned them.
// Records whose id or coordinates do not parse can never be in range and are skipped.
func (c *Client) ListLocations(ctx context.Context) (_ []domain.Location, err error) {
	defer obs.Time(ctx, "remote.ListLocations")(&err)

	var records []locationRecord
	if err := c.getJSON(ctx, "location", "location/", nil, &records); err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}

	out := make([]domain.Location, 0, len(records))
	for _, rec := range records {
		loc, err := rec.toDomain()
		if err != nil {
			log.Printf("req_id=%s skipping location: %v", obs.RequestID(ctx), err)
			continue
		}
		out = append(out, loc)
	}

	return out, nil
}

// GetLocation returns one location. A location without usable coordinates is still
// returned, with a zero coordinate, since callers only need its name.
func (c *Client) GetLocation(ctx context.Context, id int) (_ domain.Location, err error) {
	defer obs.Time(ctx, "remote.GetLocation")(&err)

	var rec locationRecord
	if err := c.getJSON(ctx, "location", fmt.Sprintf("location/%d/", id), nil, &rec); err != nil {
		return domain.Location{}, fmt.Errorf("get location %d: %w", id, err)
	}

	loc, convErr := rec.toDomain()
	if convErr != nil {
		return domain.Location{ID: int(rec.ID), Name: rec.Name}, nil
	}
	return loc, nil
}
