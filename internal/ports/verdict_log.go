package ports

import (
	"context"
	"music-nearby/internal/domain"
)

// Append-only store of verdict transitions.
type VerdictLog interface {
	Append(ctx context.Context, t domain.Transition) error
	// Return at most limit transitions, newest first.
	Recent(ctx context.Context, limit int) ([]domain.Transition, error)
}
