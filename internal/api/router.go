package api

import (
	"music-nearby/internal/api/handlers"
	"music-nearby/internal/ports"
	"music-nearby/internal/services"
	"music-nearby/internal/session"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators the host API is built from.
type Deps struct {
	Verdicts handlers.VerdictSource
	Songs    *services.SongBrowser
	History  ports.VerdictLog
	Profile  *session.Profile
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(handlers.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(handlers.MethodNotAllowed)

	verdictHandler := &handlers.VerdictHandler{Verdicts: d.Verdicts}
	songHandler := &handlers.SongHandler{Verdicts: d.Verdicts, Browser: d.Songs}
	historyHandler := &handlers.HistoryHandler{Log: d.History}
	profileHandler := &handlers.ProfileHandler{Profile: d.Profile}

	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)
	r.HandleFunc("/verdict", verdictHandler.Get).Methods(http.MethodGet)
	r.HandleFunc("/verdict/stream", verdictHandler.Stream).Methods(http.MethodGet)
	r.HandleFunc("/nearby/songs", songHandler.Nearby).Methods(http.MethodGet)
	r.HandleFunc("/songs/{id:[0-9]+}", songHandler.Get).Methods(http.MethodGet)
	r.HandleFunc("/songs/{id:[0-9]+}/ratings", songHandler.Rate).Methods(http.MethodPost)
	r.HandleFunc("/history", historyHandler.List).Methods(http.MethodGet)
	r.HandleFunc("/profile", profileHandler.Get).Methods(http.MethodGet)
	r.HandleFunc("/profile", profileHandler.Update).Methods(http.MethodPut)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return loggingMiddleware(r)
}
