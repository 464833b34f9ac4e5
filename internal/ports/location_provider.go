package ports

import (
	"context"
	"music-nearby/internal/domain"
)

// Port: a boundary for retrieving the full candidate Location set.
type LocationProvider interface {
	// Return every known location, in provider order. No pagination.
	ListLocations(ctx context.Context) ([]domain.Location, error)
}
