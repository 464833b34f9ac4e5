package ports

import (
	"context"
	"music-nearby/internal/domain"
)

// Publishes verdict transitions to interested parties outside the process.
type TransitionPublisher interface {
	PublishTransition(ctx context.Context, t domain.Transition) error
}
