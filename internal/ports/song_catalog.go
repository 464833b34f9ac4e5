package ports

import (
	"context"
	"music-nearby/internal/domain"
)

// Read/write access to songs, ratings and song-to-location mappings.
type SongCatalog interface {
	GetLocation(ctx context.Context, id int) (domain.Location, error)
	GetSong(ctx context.Context, id int) (domain.Song, error)
	ListSampleLocations(ctx context.Context, locationID int) ([]domain.SampleLocation, error)
	ListRatings(ctx context.Context, sampleID int) ([]domain.Rating, error)
	CreateRating(ctx context.Context, sampleID int, rating int) (domain.Rating, error)
}
