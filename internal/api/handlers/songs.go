package handlers

import (
	"music-nearby/internal/api/dto"
	"music-nearby/internal/domain"
	"music-nearby/internal/services"
	"net/http"
)

// SongHandler serves the songs of the location the user is near.
type SongHandler struct {
	Verdicts VerdictSource
	Browser  *services.SongBrowser
}

func (h *SongHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	v, _ := h.Verdicts.Snapshot()

	ls, err := h.Browser.NearbySongs(r.Context(), v)
	if err != nil {
		writeServiceError(w, r, "nearby songs", err)
		return
	}

	res := dto.NearbySongsResponse{
		Location: dto.LocationResponse{
			ID:        ls.Location.ID,
			Name:      ls.Location.Name,
			Latitude:  ls.Location.Coordinate.Latitude,
			Longitude: ls.Location.Coordinate.Longitude,
		},
		Songs: make([]dto.RatedSongResponse, 0, len(ls.Songs)),
	}
	for _, s := range ls.Songs {
		res.Songs = append(res.Songs, dto.RatedSongResponse{
			SongResponse:  songResponse(s.Song),
			AverageRating: s.AverageRating,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *SongHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	song, err := h.Browser.Song(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "get song", err)
		return
	}

	writeJSON(w, r, http.StatusOK, songResponse(song))
}

func (h *SongHandler) Rate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.RatingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	v, _ := h.Verdicts.Snapshot()
	rating, err := h.Browser.Rate(r.Context(), v, id, req.Rating)
	if err != nil {
		writeServiceError(w, r, "rate song", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.RatingResponse{
		ID:       rating.ID,
		SampleID: rating.SampleID,
		Rating:   rating.Rating,
	})
}

func songResponse(s domain.Song) dto.SongResponse {
	return dto.SongResponse{
		ID:            s.ID,
		Name:          s.Name,
		Type:          s.Type,
		RecordingData: s.RecordingData,
		CreatedAt:     s.CreatedAt,
	}
}
