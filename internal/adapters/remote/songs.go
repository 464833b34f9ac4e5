package remote

import (
	"context"
	"errors"
	"fmt"
	"music-nearby/internal/domain"
	"music-nearby/internal/platform/obs"
	"net/http"
	"strings"
)

func (r sampleRecord) toDomain() domain.Song {
	return domain.Song{
		ID:            int(r.ID),
		Name:          r.Name,
		Type:          r.Type,
		RecordingData: string(r.RecordingData),
		CreatedAt:     parseDatetime(r.Datetime),
	}
}

func toSampleWrite(s domain.Song) (sampleWrite, error) {
	if strings.TrimSpace(s.Name) == "" {
		return sampleWrite{}, errors.New("song name must be non-empty")
	}
	return sampleWrite{Name: s.Name, Type: s.Type, RecordingData: s.RecordingData}, nil
}

func (c *Client) ListSongs(ctx context.Context) (_ []domain.Song, err error) {
	defer obs.Time(ctx, "remote.ListSongs")(&err)

	var records []sampleRecord
	if err := c.getJSON(ctx, "sample", "sample/", nil, &records); err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}

	out := make([]domain.Song, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.toDomain())
	}
	return out, nil
}

func (c *Client) GetSong(ctx context.Context, id int) (_ domain.Song, err error) {
	defer obs.Time(ctx, "remote.GetSong")(&err)

	var rec sampleRecord
	if err := c.getJSON(ctx, "sample", fmt.Sprintf("sample/%d/", id), nil, &rec); err != nil {
		return domain.Song{}, fmt.Errorf("get song %d: %w", id, err)
	}
	return rec.toDomain(), nil
}

func (c *Client) CreateSong(ctx context.Context, s domain.Song) (_ domain.Song, err error) {
	defer obs.Time(ctx, "remote.CreateSong")(&err)

	body, err := toSampleWrite(s)
	if err != nil {
		return domain.Song{}, fmt.Errorf("create song: %w", err)
	}

	var rec sampleRecord
	if err := c.sendJSON(ctx, http.MethodPost, "sample", "sample/", body, &rec); err != nil {
		return domain.Song{}, fmt.Errorf("create song: %w", err)
	}
	return rec.toDomain(), nil
}

func (c *Client) UpdateSong(ctx context.Context, id int, s domain.Song) (_ domain.Song, err error) {
	defer obs.Time(ctx, "remote.UpdateSong")(&err)

	body, err := toSampleWrite(s)
	if err != nil {
		return domain.Song{}, fmt.Errorf("update song %d: %w", id, err)
	}

	var rec sampleRecord
	if err := c.sendJSON(ctx, http.MethodPut, "sample", fmt.Sprintf("sample/%d/", id), body, &rec); err != nil {
		return domain.Song{}, fmt.Errorf("update song %d: %w", id, err)
	}
	return rec.toDomain(), nil
}
