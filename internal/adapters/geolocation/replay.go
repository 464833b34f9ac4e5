package geolocation

import (
	"context"
	"errors"
	"fmt"
	"music-nearby/internal/domain"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Track is a recorded walk replayed by ReplaySampler.
//
//	permission: granted
//	points:
//	  - {lat: -27.4975, lon: 153.0137}
//	  - {unavailable: true}
type Track struct {
	Permission string       `yaml:"permission"`
	Points     []TrackPoint `yaml:"points"`
}

type TrackPoint struct {
	Lat         float64 `yaml:"lat"`
	Lon         float64 `yaml:"lon"`
	Unavailable bool    `yaml:"unavailable"`
}

// ReplaySampler walks a Track one point per position read, looping at the end.
// It is safe for concurrent use.
type ReplaySampler struct {
	mu         sync.Mutex
	points     []TrackPoint
	permission domain.PermissionState
	next       int
}

// LoadTrack reads and validates a YAML track file.
func LoadTrack(path string) (*Track, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load track: read %q: %w", path, err)
	}
	return ParseTrack(b)
}

func ParseTrack(b []byte) (*Track, error) {
	var t Track
	if err := yaml.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("parse track: %w", err)
	}

	if len(t.Points) == 0 {
		return nil, errors.New("parse track: track has no points")
	}

	for i, p := range t.Points {
		if p.Unavailable {
			continue
		}
		c := domain.Coordinate{Latitude: p.Lat, Longitude: p.Lon}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("parse track: point #%d: %w", i+1, err)
		}
	}

	switch strings.ToLower(strings.TrimSpace(t.Permission)) {
	case "", "granted", "denied":
	default:
		return nil, fmt.Errorf("parse track: unknown permission %q", t.Permission)
	}

	return &t, nil
}

func NewReplaySampler(t *Track) *ReplaySampler {
	perm := domain.PermissionGranted
	if strings.EqualFold(strings.TrimSpace(t.Permission), "denied") {
		perm = domain.PermissionDenied
	}

	points := make([]TrackPoint, len(t.Points))
	copy(points, t.Points)

	return &ReplaySampler{points: points, permission: perm}
}

func (r *ReplaySampler) RequestPermission(ctx context.Context) (domain.PermissionState, error) {
	if err := ctx.Err(); err != nil {
		return domain.PermissionDenied, err
	}
	return r.permission, nil
}

func (r *ReplaySampler) CurrentPosition(ctx context.Context) (domain.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return domain.Coordinate{}, err
	}
	if r.permission == domain.PermissionDenied {
		return domain.Coordinate{}, domain.ErrPermissionDenied
	}

	r.mu.Lock()
	p := r.points[r.next]
	r.next = (r.next + 1) % len(r.points)
	r.mu.Unlock()

	if p.Unavailable {
		return domain.Coordinate{}, domain.ErrPositionUnavailable
	}
	return domain.Coordinate{Latitude: p.Lat, Longitude: p.Lon}, nil
}
