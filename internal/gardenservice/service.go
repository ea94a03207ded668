// Package gardenservice coordinates the saved-plant store, the preference
// profile and the recommendation pipeline for the API and MCP layers.
package gardenservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/starford/sprout/internal/apperr"
	"github.com/starford/sprout/internal/models"
	"github.com/starford/sprout/internal/plantstore"
	"github.com/starford/sprout/internal/profile"
	"github.com/starford/sprout/internal/recommend"
	"github.com/starford/sprout/internal/reveal"
)

// DefaultSearchTTL is how long search results are reused for the same query.
const DefaultSearchTTL = 10 * time.Minute

// Recommender produces enriched plant suggestions.
type Recommender interface {
	FromProfile(ctx context.Context, p models.PreferenceProfile) ([]models.Plant, error)
	Similar(ctx context.Context, seed *models.Plant) ([]models.Plant, error)
	Search(ctx context.Context, query string) ([]models.Plant, error)
}

// PlantView is a plant as shown on a card.
type PlantView struct {
	models.Plant
	DisplayImage string `json:"displayImage"`
	BenefitsText string `json:"benefitsText"`
	Saved        bool   `json:"saved"`
}

// PlantDetail adds care tips and a shopping link.
type PlantDetail struct {
	PlantView
	CareTips models.CareTips `json:"careTips"`
	ShopURL  string          `json:"shopUrl"`
}

// ProfileState is the preference form status.
type ProfileState struct {
	Completed bool                      `json:"completed"`
	Profile   *models.PreferenceProfile `json:"profile,omitempty"`
	Defaults  models.PreferenceProfile  `json:"defaults"`
}

// SearchPage is one page of search results.
type SearchPage struct {
	Query      string      `json:"query"`
	Page       int         `json:"page"`
	TotalPages int         `json:"totalPages"`
	Total      int         `json:"total"`
	Results    []PlantView `json:"results"`
}

// SavedPage is the visible slice of the saved-plant listing.
type SavedPage struct {
	Plants  []PlantView `json:"plants"`
	Visible int         `json:"visible"`
	Total   int         `json:"total"`
	HasMore bool        `json:"hasMore"`
	Reset   bool        `json:"reset"`
}

// Service is the application layer shared by every transport.
type Service struct {
	plants   *plantstore.Store
	profile  *profile.Store
	rec      Recommender
	searches *cache.Cache
	logger   *slog.Logger
}

// New creates a service. A non-positive searchTTL selects DefaultSearchTTL.
func New(plants *plantstore.Store, prof *profile.Store, rec Recommender, searchTTL time.Duration, logger *slog.Logger) *Service {
	if searchTTL <= 0 {
		searchTTL = DefaultSearchTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		plants:   plants,
		profile:  prof,
		rec:      rec,
		searches: cache.New(searchTTL, 2*searchTTL),
		logger:   logger,
	}
}

// Profile returns the preference form status.
func (s *Service) Profile(ctx context.Context) (ProfileState, error) {
	state := ProfileState{Defaults: models.DefaultPreferenceProfile()}
	done, err := s.profile.Completed(ctx)
	if err != nil {
		return state, err
	}
	state.Completed = done
	if !done {
		return state, nil
	}
	p, err := s.profile.Get(ctx)
	switch {
	case err == nil:
		state.Profile = &p
	case !errors.Is(err, apperr.ErrNotFound):
		return state, err
	}
	return state, nil
}

// SubmitProfile records the preference form.
func (s *Service) SubmitProfile(ctx context.Context, p models.PreferenceProfile) error {
	return s.profile.Submit(ctx, p)
}

// Recommendations suggests plants for the home view. With nothing saved the
// preference form seeds the prompt; otherwise the first saved plant does.
// Saved species are filtered out and the list is capped at
// recommend.MaxRecommendations.
func (s *Service) Recommendations(ctx context.Context) ([]PlantView, error) {
	done, err := s.profile.Completed(ctx)
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, apperr.ErrProfileRequired
	}

	var plants []models.Plant
	if seed := s.plants.First(); seed != nil {
		plants, err = s.rec.Similar(ctx, seed)
	} else {
		var p models.PreferenceProfile
		p, err = s.profile.Get(ctx)
		if errors.Is(err, apperr.ErrNotFound) {
			p, err = models.DefaultPreferenceProfile(), nil
		}
		if err != nil {
			return nil, err
		}
		plants, err = s.rec.FromProfile(ctx, p)
	}
	if err != nil {
		return nil, err
	}

	plants = recommend.ExcludeSaved(plants, s.plants.List())
	if len(plants) > recommend.MaxRecommendations {
		plants = plants[:recommend.MaxRecommendations]
	}
	return s.views(plants), nil
}

func searchKey(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Search returns one page of plants matching query. Results for a query are
// generated once and served from cache for later pages.
func (s *Service) Search(ctx context.Context, query string, page int) (SearchPage, error) {
	key := searchKey(query)
	if key == "" {
		return SearchPage{}, fmt.Errorf("gardenservice: search: %w: empty query", apperr.ErrInvalidInput)
	}

	var plants []models.Plant
	if v, ok := s.searches.Get(key); ok {
		plants = v.([]models.Plant)
	} else {
		found, err := s.rec.Search(ctx, query)
		if err != nil {
			return SearchPage{}, err
		}
		if len(found) == 0 {
			return SearchPage{}, fmt.Errorf("gardenservice: search: %w", apperr.ErrNoResults)
		}
		s.searches.SetDefault(key, found)
		plants = found
		s.logger.Info("search generated",
			slog.String("query", key),
			slog.Int("results", len(found)))
	}

	pg := reveal.NewPaginator(reveal.DefaultPerPage, len(plants))
	page = pg.Clamp(page)
	start, end := pg.Page(page)
	return SearchPage{
		Query:      strings.TrimSpace(query),
		Page:       page,
		TotalPages: pg.TotalPages(),
		Total:      len(plants),
		Results:    s.views(plants[start:end]),
	}, nil
}

// Saved returns the visible part of the saved-plant listing. visible and
// seenTotal are the count the client shows and the total it last saw (0 for a
// fresh view, negative when unknown). ratio is the latest sentinel
// intersection ratio. When the total changed since seenTotal the listing
// starts over at the initial page size and the ratio is ignored.
func (s *Service) Saved(visible, seenTotal int, ratio float64) SavedPage {
	plants := s.plants.List()
	if seenTotal < 0 {
		seenTotal = len(plants)
	}
	c := reveal.New(reveal.DefaultPageSize, reveal.DefaultIncrement, seenTotal)
	if visible > 0 {
		c.Seek(visible)
	}
	reset := seenTotal != len(plants)
	c.SetTotal(len(plants))
	if !reset {
		c.Intersect(ratio)
	}
	return SavedPage{
		Plants:  s.views(plants[:c.Visible()]),
		Visible: c.Visible(),
		Total:   c.Total(),
		HasMore: c.Observing(),
		Reset:   reset && visible > 0,
	}
}

// AllSaved returns every saved plant.
func (s *Service) AllSaved() []PlantView {
	return s.views(s.plants.List())
}

// Save adds p to the collection and reports whether it was new. Surrounding
// whitespace is trimmed from the name and scientific name before storing.
func (s *Service) Save(ctx context.Context, p models.Plant) (bool, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.ScientificName = strings.TrimSpace(p.ScientificName)
	if p.Name == "" || p.ScientificName == "" || p.Benefits.String() == "" {
		return false, fmt.Errorf("gardenservice: save: %w: name, scientificName and benefits are required", apperr.ErrInvalidInput)
	}
	return s.plants.Add(ctx, p)
}

// Remove deletes the saved plant with scientificName.
func (s *Service) Remove(ctx context.Context, scientificName string) error {
	n, err := s.plants.Remove(ctx, scientificName)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ClearSaved deletes every saved plant and returns how many were removed.
func (s *Service) ClearSaved(ctx context.Context) (int, error) {
	return s.plants.Clear(ctx)
}

// Detail returns a saved plant with its care tips.
func (s *Service) Detail(scientificName string) (PlantDetail, error) {
	p, ok := s.plants.Get(scientificName)
	if !ok {
		return PlantDetail{}, apperr.ErrNotFound
	}
	return PlantDetail{
		PlantView: s.view(p),
		CareTips:  p.CareTips(),
		ShopURL:   p.ShopURL(),
	}, nil
}

func (s *Service) view(p models.Plant) PlantView {
	return PlantView{
		Plant:        p,
		DisplayImage: p.DisplayImage(),
		BenefitsText: models.FormatBenefits(p.Benefits),
		Saved:        s.plants.Contains(p.ScientificName),
	}
}

func (s *Service) views(plants []models.Plant) []PlantView {
	out := make([]PlantView, len(plants))
	for i, p := range plants {
		out[i] = s.view(p)
	}
	return out
}
