package events

import (
	"context"
	"music-nearby/internal/domain"
)

// NopPublisher drops every transition. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishTransition(context.Context, domain.Transition) error { return nil }
