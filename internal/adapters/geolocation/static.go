package geolocation

import (
	"context"
	"music-nearby/internal/domain"
)

// StaticSampler reports a fixed position, for desktop runs and demos where no
// positioning hardware is present.
type StaticSampler struct {
	position   domain.Coordinate
	permission domain.PermissionState
}

func NewStaticSampler(position domain.Coordinate, permission domain.PermissionState) (*StaticSampler, error) {
	if err := position.Validate(); err != nil {
		return nil, err
	}
	return &StaticSampler{position: position, permission: permission}, nil
}

func (s *StaticSampler) RequestPermission(ctx context.Context) (domain.PermissionState, error) {
	if err := ctx.Err(); err != nil {
		return domain.PermissionDenied, err
	}
	return s.permission, nil
}

func (s *StaticSampler) CurrentPosition(ctx context.Context) (domain.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return domain.Coordinate{}, err
	}
	if s.permission == domain.PermissionDenied {
		return domain.Coordinate{}, domain.ErrPermissionDenied
	}
	return s.position, nil
}
