package dto

import (
	"music-nearby/internal/domain"
	"time"
)

type VerdictResponse struct {
	Near       bool       `json:"near"`
	LocationID *int       `json:"location_id"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

func NewVerdictResponse(v domain.Verdict, updatedAt time.Time) VerdictResponse {
	res := VerdictResponse{}
	if id, near := v.IsNear(); near {
		res.Near = true
		res.LocationID = &id
	}
	if !updatedAt.IsZero() {
		res.UpdatedAt = &updatedAt
	}
	return res
}

type TransitionResponse struct {
	Event          string    `json:"event"`
	FromLocationID *int      `json:"from_location_id"`
	ToLocationID   *int      `json:"to_location_id"`
	Latitude       *float64  `json:"latitude,omitempty"`
	Longitude      *float64  `json:"longitude,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type ListHistoryResponse struct {
	Transitions []TransitionResponse `json:"transitions"`
}

func NewTransitionResponse(t domain.Transition) TransitionResponse {
	res := TransitionResponse{Event: "exit", OccurredAt: t.OccurredAt}
	if t.Entered() {
		res.Event = "enter"
	}
	if id, near := t.From.IsNear(); near {
		res.FromLocationID = &id
	}
	if id, near := t.To.IsNear(); near {
		res.ToLocationID = &id
	}
	if t.Position != nil {
		lat, lon := t.Position.Latitude, t.Position.Longitude
		res.Latitude, res.Longitude = &lat, &lon
	}
	return res
}
