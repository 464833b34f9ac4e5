package remote

import (
	"context"
	"errors"
	"fmt"
	"music-nearby/internal/domain"
	"music-nearby/internal/platform/obs"
	"net/http"
	"net/url"
	"strconv"
)

func (r sampleLocationRecord) toDomain() domain.SampleLocation {
	return domain.SampleLocation{ID: int(r.ID), LocationID: int(r.LocationID), SampleID: int(r.SampleID)}
}

func (c *Client) listSampleLocations(ctx context.Context, query url.Values) ([]domain.SampleLocation, error) {
	var records []sampleLocationRecord
	if err := c.getJSON(ctx, "sampletolocation", "sampletolocation/", query, &records); err != nil {
		return nil, err
	}

	out := make([]domain.SampleLocation, 0, len(records))
	for _, rec := range records {
		if rec.SampleID <= 0 || rec.LocationID <= 0 {
			continue
		}
		out = append(out, rec.toDomain())
	}
	return out, nil
}

// ListSampleLocations returns the song mappings of one location, in service order.
func (c *Client) ListSampleLocations(ctx context.Context, locationID int) (_ []domain.SampleLocation, err error) {
	defer obs.Time(ctx, "remote.ListSampleLocations")(&err)

	all, err := c.listSampleLocations(ctx, url.Values{"location_id": {strconv.Itoa(locationID)}})
	if err != nil {
		return nil, fmt.Errorf("list songs at location %d: %w", locationID, err)
	}

	out := make([]domain.SampleLocation, 0, len(all))
	for _, m := range all {
		if m.LocationID == locationID {
			out = append(out, m)
		}
	}
	return out, nil
}

// FindSampleLocation returns the mapping of sampleID to locationID, or domain.ErrNotFound.
func (c *Client) FindSampleLocation(ctx context.Context, locationID, sampleID int) (_ domain.SampleLocation, err error) {
	defer obs.Time(ctx, "remote.FindSampleLocation")(&err)

	all, err := c.listSampleLocations(ctx, nil)
	if err != nil {
		return domain.SampleLocation{}, fmt.Errorf("find song %d at location %d: %w", sampleID, locationID, err)
	}

	for _, m := range all {
		if m.LocationID == locationID && m.SampleID == sampleID {
			return m, nil
		}
	}
	return domain.SampleLocation{}, fmt.Errorf("find song %d at location %d: %w", sampleID, locationID, domain.ErrNotFound)
}

func (c *Client) CreateSampleLocation(ctx context.Context, locationID, sampleID int) (_ domain.SampleLocation, err error) {
	defer obs.Time(ctx, "remote.CreateSampleLocation")(&err)

	var rec sampleLocationRecord
	body := sampleLocationWrite{LocationID: locationID, SampleID: sampleID}
	if err := c.sendJSON(ctx, http.MethodPost, "sampletolocation", "sampletolocation/", body, &rec); err != nil {
		return domain.SampleLocation{}, fmt.Errorf("attach song %d to location %d: %w", sampleID, locationID, err)
	}
	return rec.toDomain(), nil
}

// DeleteSampleLocation detaches a song from a location. It reports false, without
// error, when the song was not attached.
func (c *Client) DeleteSampleLocation(ctx context.Context, locationID, sampleID int) (_ bool, err error) {
	defer obs.Time(ctx, "remote.DeleteSampleLocation")(&err)

	m, err := c.FindSampleLocation(ctx, locationID, sampleID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	path := fmt.Sprintf("sampletolocation/%d/", m.ID)
	if err := c.sendJSON(ctx, http.MethodDelete, "sampletolocation", path, nil, nil); err != nil {
		return false, fmt.Errorf("detach song %d from location %d: %w", sampleID, locationID, err)
	}
	return true, nil
}
