package remote

import (
	"context"
	"encoding/json"
	"io"
	"music-nearby/internal/domain"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/api/", "test-key")
	require.NoError(t, err)
	c.backoff = time.Millisecond
	return c
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(DefaultBaseURL, " ")
	assert.Error(t, err)

	_, err = NewClient("ftp://example.com", "k")
	assert.Error(t, err)

	c, err := NewClient("https://example.com/api/", "k")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/api", c.baseURL)
}

func TestListLocationsParsesStringCoordinates(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/location/", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		_, _ = io.WriteString(w, `[
			{"id": 3, "name": "Great Court", "latitude": "-27.4975", "longitude": "153.0137"},
			{"id": "4", "name": "Broken", "latitude": "", "longitude": "153"},
			{"id": 5, "name": "Numeric", "latitude": -27.5, "longitude": 153.01}
		]`)
	}))

	locs, err := c.ListLocations(context.Background())
	require.NoError(t, err)
	require.Len(t, locs, 2)

	assert.Equal(t, domain.Location{ID: 3, Name: "Great Court", Coordinate: domain.Coordinate{Latitude: -27.4975, Longitude: 153.0137}}, locs[0])
	assert.Equal(t, 5, locs[1].ID, "order must follow the service")
}

func TestListLocationsSkipsMalformedRecords(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[
			{"id": 3, "name": "Great Court", "latitude": "-27.4975", "longitude": "153.0137"},
			{"id": 4, "name": "Typo", "latitude": "-27.49x", "longitude": "153.0137"},
			{"id": "four", "name": "Bad id", "latitude": "-27.4", "longitude": "153.0"},
			{"id": 6, "name": "Object", "latitude": {"deg": -27}, "longitude": true}
		]`)
	}))

	locs, err := c.ListLocations(context.Background())
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, 3, locs[0].ID)
}

func TestListRatingsDropsMalformedValues(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[
			{"id": 1, "sample_id": 7, "rating": "five"},
			{"id": 2, "sample_id": 7, "rating": 2.5},
			{"id": 3, "sample_id": 7, "rating": 5}
		]`)
	}))

	ratings, err := c.ListRatings(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []domain.Rating{{ID: 3, SampleID: 7, Rating: 5}}, ratings)
}

func TestGetRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	}))

	locs, err := c.ListLocations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, locs)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetGivesUpOnClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusNotFound)
	}))

	_, err := c.GetSong(context.Background(), 9)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCreateRatingIsNotRetriedOnServerError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := c.CreateRating(context.Background(), 1, 4)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCreateRating(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/samplerating/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]int{"sample_id": 12, "rating": 5}, body)

		_, _ = io.WriteString(w, `{"id": 40, "sample_id": 12, "rating": 5}`)
	}))

	got, err := c.CreateRating(context.Background(), 12, 5)
	require.NoError(t, err)
	assert.Equal(t, domain.Rating{ID: 40, SampleID: 12, Rating: 5}, got)

	_, err = c.CreateRating(context.Background(), 12, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidRating)
}

func TestListRatingsFiltersBySample(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("sample_id"))
		_, _ = io.WriteString(w, `[
			{"id": 1, "sample_id": 7, "rating": "4"},
			{"id": 2, "sample_id": 8, "rating": 1},
			{"id": 3, "sample_id": "7", "rating": 2}
		]`)
	}))

	ratings, err := c.ListRatings(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []domain.Rating{{ID: 1, SampleID: 7, Rating: 4}, {ID: 3, SampleID: 7, Rating: 2}}, ratings)
}

func TestGetSongDecodesRecordingData(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sample/5/", r.URL.Path)
		_, _ = io.WriteString(w, `{"id": 5, "name": "Bells", "type": "piano",
			"recording_data": "[{\"note\":\"C4\"}]", "datetime": "2024-05-01T10:00:00Z"}`)
	}))

	s, err := c.GetSong(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Bells", s.Name)
	assert.Equal(t, `[{"note":"C4"}]`, s.RecordingData)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), s.CreatedAt)
}

func TestDeleteSampleLocation(t *testing.T) {
	var deleted atomic.Value
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = io.WriteString(w, `[
				{"id": 90, "location_id": 1, "sample_id": 2},
				{"id": 91, "location_id": 3, "sample_id": 4}
			]`)
		case http.MethodDelete:
			deleted.Store(r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		}
	}))

	ok, err := c.DeleteSampleLocation(context.Background(), 3, 4)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/api/sampletolocation/91/", deleted.Load())

	ok, err = c.DeleteSampleLocation(context.Background(), 3, 99)
	require.NoError(t, err)
	assert.False(t, ok)
}
