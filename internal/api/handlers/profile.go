package handlers

import (
	"music-nearby/internal/api/dto"
	"music-nearby/internal/domain"
	"music-nearby/internal/session"
	"net/http"
)

type ProfileHandler struct {
	Profile *session.Profile
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, profileResponse(h.Profile.Get()))
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.ProfileRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, profileResponse(h.Profile.Update(req.Name, req.ImageURI)))
}

func profileResponse(p domain.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{Name: p.Name, ImageURI: p.ImageURI}
}
