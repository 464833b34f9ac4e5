package domain

import "time"

// Represents a crowd-sourced audio sample stored by the remote service.
// RecordingData and Type are opaque to the client and are handed to a player as-is.
type Song struct {
	ID            int
	Name          string
	Type          string
	RecordingData string
	CreatedAt     time.Time
}

// A single user rating of a song, 1 to 5 stars.
type Rating struct {
	ID       int
	SampleID int
	Rating   int
}

// Links a song to a location. A song may be attached to several locations.
type SampleLocation struct {
	ID         int
	LocationID int
	SampleID   int
}

// Song with the average of its ratings, as shown in a location's song list.
type RatedSong struct {
	Song          Song
	AverageRating float64
}

// Songs available at one location.
type LocationSongs struct {
	Location Location
	Songs    []RatedSong
}

const (
	MinRating = 1
	MaxRating = 5
)

// AverageRating returns the arithmetic mean of ratings, or 0 when there are none.
func AverageRating(ratings []Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}
	return float64(sum) / float64(len(ratings))
}
