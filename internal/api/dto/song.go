package dto

import "time"

type SongResponse struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	RecordingData string    `json:"recording_data"`
	CreatedAt     time.Time `json:"created_at"`
}

type RatedSongResponse struct {
	SongResponse
	AverageRating float64 `json:"average_rating"`
}

type LocationResponse struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type NearbySongsResponse struct {
	Location LocationResponse    `json:"location"`
	Songs    []RatedSongResponse `json:"songs"`
}

type RatingRequest struct {
	Rating int `json:"rating"`
}

type RatingResponse struct {
	ID       int `json:"id"`
	SampleID int `json:"sample_id"`
	Rating   int `json:"rating"`
}
