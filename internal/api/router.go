// Package api implements the Sprout JSON API using chi.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/sprout/internal/gardenservice"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *gardenservice.Service, sseHandler http.Handler, logger *slog.Logger) chi.Router {
	h := NewHandler(svc, logger)

	r := chi.NewRouter()

	// Preference form.
	r.Get("/profile", h.GetProfile)
	r.Post("/profile", h.SubmitProfile)

	// Suggestions.
	r.Get("/recommendations", h.Recommendations)
	r.Get("/search", h.Search)

	// Saved plants.
	r.Get("/plants", h.ListPlants)
	r.Post("/plants", h.SavePlant)
	r.Delete("/plants", h.ClearPlants)
	r.Get("/plants/{scientificName}", h.GetPlant)
	r.Delete("/plants/{scientificName}", h.RemovePlant)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
