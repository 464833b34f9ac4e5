package remote

import (
	"context"
	"fmt"
	"music-nearby/internal/domain"
	"music-nearby/internal/platform/obs"
	"net/http"
	"net/url"
	"strconv"
)

func (r ratingRecord) toDomain() domain.Rating {
	return domain.Rating{ID: int(r.ID), SampleID: int(r.SampleID), Rating: int(r.Rating)}
}

func validRating(rating int) error {
	if rating < domain.MinRating || rating > domain.MaxRating {
		return fmt.Errorf("%w: %d is outside %d..%d", domain.ErrInvalidRating, rating, domain.MinRating, domain.MaxRating)
	}
	return nil
}

// ListRatings returns the ratings of one song.
func (c *Client) ListRatings(ctx context.Context, sampleID int) (_ []domain.Rating, err error) {
	defer obs.Time(ctx, "remote.ListRatings")(&err)

	q := url.Values{"sample_id": {strconv.Itoa(sampleID)}}

	var records []ratingRecord
	if err := c.getJSON(ctx, "samplerating", "samplerating/", q, &records); err != nil {
		return nil, fmt.Errorf("list ratings for song %d: %w", sampleID, err)
	}

	// The filter is applied again locally in case the service ignores the query.
	// Ratings that did not decode to 1..5 are dropped so they cannot skew the average.
	out := make([]domain.Rating, 0, len(records))
	for _, rec := range records {
		if int(rec.SampleID) != sampleID || validRating(int(rec.Rating)) != nil {
			continue
		}
		out = append(out, rec.toDomain())
	}
	return out, nil
}

func (c *Client) CreateRating(ctx context.Context, sampleID int, rating int) (_ domain.Rating, err error) {
	defer obs.Time(ctx, "remote.CreateRating")(&err)

	if err := validRating(rating); err != nil {
		return domain.Rating{}, fmt.Errorf("create rating: %w", err)
	}

	var rec ratingRecord
	body := ratingWrite{SampleID: sampleID, Rating: rating}
	if err := c.sendJSON(ctx, http.MethodPost, "samplerating", "samplerating/", body, &rec); err != nil {
		return domain.Rating{}, fmt.Errorf("create rating for song %d: %w", sampleID, err)
	}
	return rec.toDomain(), nil
}

func (c *Client) UpdateRating(ctx context.Context, id int, sampleID int, rating int) (_ domain.Rating, err error) {
	defer obs.Time(ctx, "remote.UpdateRating")(&err)

	if err := validRating(rating); err != nil {
		return domain.Rating{}, fmt.Errorf("update rating %d: %w", id, err)
	}

	var rec ratingRecord
	body := ratingWrite{SampleID: sampleID, Rating: rating}
	if err := c.sendJSON(ctx, http.MethodPut, "samplerating", fmt.Sprintf("samplerating/%d/", id), body, &rec); err != nil {
		return domain.Rating{}, fmt.Errorf("update rating %d: %w", id, err)
	}
	return rec.toDomain(), nil
}
