package handlers

import (
	"log"
	"music-nearby/internal/api/dto"
	"music-nearby/internal/ports"
	"net/http"
	"strconv"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

type HistoryHandler struct {
	Log ports.VerdictLog
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	transitions, err := h.Log.Recent(r.Context(), limit)
	if err != nil {
		log.Printf("list history failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListHistoryResponse{Transitions: make([]dto.TransitionResponse, 0, len(transitions))}
	for _, t := range transitions {
		res.Transitions = append(res.Transitions, dto.NewTransitionResponse(t))
	}

	writeJSON(w, r, http.StatusOK, res)
}
