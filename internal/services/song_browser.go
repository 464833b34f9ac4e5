package services

import (
	"context"
	"fmt"
	"music-nearby/internal/domain"
	"music-nearby/internal/ports"

	"golang.org/x/sync/errgroup"
)

// Upper bound on concurrent requests made while assembling one song list.
const maxSongFetches = 5

// SongBrowser assembles the song list, song details and ratings of the location the
// user is currently near. It never decides proximity itself: callers pass the verdict.
type SongBrowser struct {
	catalog ports.SongCatalog
}

func NewSongBrowser(catalog ports.SongCatalog) *SongBrowser {
	return &SongBrowser{catalog: catalog}
}

// NearbySongs lists the songs of the location named by verdict, each with its average
// rating, in the order the service maps them to the location.
// It fails with domain.ErrNotNearby when the verdict is NotNear.
func (b *SongBrowser) NearbySongs(ctx context.Context, verdict domain.Verdict) (*domain.LocationSongs, error) {
	locationID, near := verdict.IsNear()
	if !near {
		return nil, fmt.Errorf("nearby songs: %w", domain.ErrNotNearby)
	}

	mappings, err := b.catalog.ListSampleLocations(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("nearby songs: %w", err)
	}

	songs := make([]domain.RatedSong, len(mappings))
	var location domain.Location

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxSongFetches)

	g.Go(func() error {
		loc, err := b.catalog.GetLocation(gctx, locationID)
		if err != nil {
			return fmt.Errorf("get location %d: %w", locationID, err)
		}
		location = loc
		return nil
	})

	for i, m := range mappings {
		i, m := i, m
		g.Go(func() error {
			song, err := b.catalog.GetSong(gctx, m.SampleID)
			if err != nil {
				return fmt.Errorf("get song %d: %w", m.SampleID, err)
			}
			ratings, err := b.catalog.ListRatings(gctx, m.SampleID)
			if err != nil {
				return fmt.Errorf("list ratings for song %d: %w", m.SampleID, err)
			}
			songs[i] = domain.RatedSong{Song: song, AverageRating: domain.AverageRating(ratings)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("nearby songs at location %d: %w", locationID, err)
	}

	return &domain.LocationSongs{Location: location, Songs: songs}, nil
}

// Song returns one song for playback.
func (b *SongBrowser) Song(ctx context.Context, id int) (domain.Song, error) {
	if id <= 0 {
		return domain.Song{}, fmt.Errorf("get song: %w: id %d", domain.ErrNotFound, id)
	}
	s, err := b.catalog.GetSong(ctx, id)
	if err != nil {
		return domain.Song{}, fmt.Errorf("get song: %w", err)
	}
	return s, nil
}

// Rate stores a 1..5 star rating for a song. Like the star widget it replaces, a rating
// of zero or below means "not rated" and is rejected without contacting the service.
// Rating requires a Near verdict so that only people at a location rate its songs.
func (b *SongBrowser) Rate(ctx context.Context, verdict domain.Verdict, sampleID int, rating int) (domain.Rating, error) {
	if _, near := verdict.IsNear(); !near {
		return domain.Rating{}, fmt.Errorf("rate song %d: %w", sampleID, domain.ErrNotNearby)
	}
	if rating < domain.MinRating || rating > domain.MaxRating {
		return domain.Rating{}, fmt.Errorf("rate song %d: %w: %d", sampleID, domain.ErrInvalidRating, rating)
	}

	r, err := b.catalog.CreateRating(ctx, sampleID, rating)
	if err != nil {
		return domain.Rating{}, fmt.Errorf("rate song %d: %w", sampleID, err)
	}
	return r, nil
}
