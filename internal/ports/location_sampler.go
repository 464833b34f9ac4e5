package ports

import (
	"context"
	"music-nearby/internal/domain"
)

// Contract for reading the device position.
type LocationSampler interface {
	// Trigger the permission prompt if undecided and return the result.
	// Re-requesting after a grant is expected to be a cheap no-op.
	RequestPermission(ctx context.Context) (domain.PermissionState, error)
	// Return one position fix. Fails with domain.ErrPermissionDenied or domain.ErrPositionUnavailable.
	CurrentPosition(ctx context.Context) (domain.Coordinate, error)
}
