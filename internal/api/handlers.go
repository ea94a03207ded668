package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/sprout/internal/gardenservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc    *gardenservice.Service
	logger *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(svc *gardenservice.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// scientificName extracts the plant identity from the URL. Encoded names
// (e.g. Dracaena%20trifasciata) are decoded.
func scientificName(r *http.Request) string {
	raw := chi.URLParam(r, "scientificName")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// GetProfile handles GET /api/profile.
//
//	@Summary		Preference form status
//	@Tags			profile
//	@Produce		json
//	@Success		200	{object}	ProfileResponse
//	@Router			/profile [get]
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Profile(r.Context())
	if err != nil {
		h.writeError(w, "get profile", err)
		return
	}
	writeJSON(w, http.StatusOK, ProfileResponse{ProfileState: st, Options: profileOptions()})
}

// SubmitProfile handles POST /api/profile.
//
//	@Summary		Submit the one-time preference form
//	@Tags			profile
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SubmitProfileRequest	true	"Form answers"
//	@Success		201		{object}	ProfileResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Router			/profile [post]
func (h *Handler) SubmitProfile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req SubmitProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.svc.SubmitProfile(r.Context(), req); err != nil {
		h.writeError(w, "submit profile", err)
		return
	}
	st, err := h.svc.Profile(r.Context())
	if err != nil {
		h.writeError(w, "get profile", err)
		return
	}
	writeJSON(w, http.StatusCreated, ProfileResponse{ProfileState: st, Options: profileOptions()})
}

// Recommendations handles GET /api/recommendations.
//
//	@Summary		Plant suggestions for the home view
//	@Tags			plants
//	@Produce		json
//	@Success		200	{object}	RecommendationsResponse
//	@Failure		412	{object}	errResponse
//	@Failure		502	{object}	errResponse
//	@Router			/recommendations [get]
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	plants, err := h.svc.Recommendations(r.Context())
	if err != nil {
		h.writeError(w, "recommendations", err)
		return
	}
	writeJSON(w, http.StatusOK, RecommendationsResponse{Plants: plants})
}

// Search handles GET /api/search.
//
//	@Summary		Free-text plant search
//	@Tags			plants
//	@Produce		json
//	@Param			q		query		string	true	"Description"
//	@Param			page	query		int		false	"Page number, from 1"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	res, err := h.svc.Search(r.Context(), q, page)
	if err != nil {
		h.writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListPlants handles GET /api/plants.
//
//	@Summary		Saved plants, revealed incrementally
//	@Tags			plants
//	@Produce		json
//	@Param			visible	query		int		false	"Cards the client already shows"
//	@Param			total	query		int		false	"Total the client last saw"
//	@Param			ratio	query		number	false	"Sentinel intersection ratio"
//	@Success		200		{object}	PlantListResponse
//	@Router			/plants [get]
func (h *Handler) ListPlants(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	visible, _ := strconv.Atoi(q.Get("visible"))
	total := -1
	if v, err := strconv.Atoi(q.Get("total")); err == nil {
		total = v
	}
	ratio, _ := strconv.ParseFloat(q.Get("ratio"), 64)
	writeJSON(w, http.StatusOK, h.svc.Saved(visible, total, ratio))
}

// SavePlant handles POST /api/plants.
//
//	@Summary		Save a plant
//	@Tags			plants
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SavePlantRequest	true	"Plant to save"
//	@Success		201		{object}	SavePlantResponse
//	@Success		200		{object}	SavePlantResponse	"Already saved"
//	@Failure		400		{object}	errResponse
//	@Router			/plants [post]
func (h *Handler) SavePlant(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req SavePlantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	added, err := h.svc.Save(r.Context(), req)
	if err != nil {
		h.writeError(w, "save plant", err)
		return
	}
	d, err := h.svc.Detail(strings.TrimSpace(req.ScientificName))
	if err != nil {
		h.writeError(w, "save plant", err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, SavePlantResponse{Added: added, Plant: d.PlantView})
}

// ClearPlants handles DELETE /api/plants.
//
//	@Summary		Remove every saved plant
//	@Tags			plants
//	@Produce		json
//	@Success		200	{object}	ClearPlantsResponse
//	@Router			/plants [delete]
func (h *Handler) ClearPlants(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ClearSaved(r.Context())
	if err != nil {
		h.writeError(w, "clear plants", err)
		return
	}
	writeJSON(w, http.StatusOK, ClearPlantsResponse{Removed: n})
}

// GetPlant handles GET /api/plants/{scientificName}.
//
//	@Summary		Saved plant with care tips
//	@Tags			plants
//	@Produce		json
//	@Param			scientificName	path		string	true	"Scientific name"
//	@Success		200				{object}	PlantDetailResponse
//	@Failure		404				{object}	errResponse
//	@Router			/plants/{scientificName} [get]
func (h *Handler) GetPlant(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Detail(scientificName(r))
	if err != nil {
		h.writeError(w, "get plant", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// RemovePlant handles DELETE /api/plants/{scientificName}.
//
//	@Summary		Remove a saved plant
//	@Tags			plants
//	@Param			scientificName	path	string	true	"Scientific name"
//	@Success		204				"Plant removed"
//	@Failure		404				{object}	errResponse
//	@Router			/plants/{scientificName} [delete]
func (h *Handler) RemovePlant(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Remove(r.Context(), scientificName(r)); err != nil {
		h.writeError(w, "remove plant", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
