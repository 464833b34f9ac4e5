package domain

import "errors"

var (
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrLocationFetchFailed = errors.New("location fetch failed")
	ErrNotNearby           = errors.New("not near any location")
	ErrInvalidRating       = errors.New("invalid rating")
	ErrInvalidCoordinate   = errors.New("invalid coordinate")
	ErrNotFound            = errors.New("not found")
)
