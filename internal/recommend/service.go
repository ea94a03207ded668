// Package recommend asks the generation service for plant suggestions and
// turns the reply into enriched plant records.
package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/sprout/internal/apperr"
	"github.com/starford/sprout/internal/models"
	"github.com/starford/sprout/internal/parser"
)

// MaxRecommendations caps the recommendation list shown after filtering.
const MaxRecommendations = 12

// Generator sends a prompt and returns the first candidate's text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Enricher attaches images and timestamps to parsed plants.
type Enricher interface {
	Enrich(ctx context.Context, plants []models.Plant) []models.Plant
}

// Service builds prompts and runs the parse, validate and enrich pipeline.
type Service struct {
	gen      Generator
	enricher Enricher
	logger   *slog.Logger
}

// NewService creates a recommendation service.
func NewService(gen Generator, enricher Enricher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gen: gen, enricher: enricher, logger: logger}
}

// FromProfile suggests plants for the answers of the preference form.
func (s *Service) FromProfile(ctx context.Context, p models.PreferenceProfile) ([]models.Plant, error) {
	plants, err := s.run(ctx, "profile", profilePrompt(p))
	if err != nil {
		return nil, fmt.Errorf("recommend: from profile: %w", err)
	}
	return plants, nil
}

// Similar suggests plants like seed, excluding seed's own species. A nil
// seed sends the prompt with an empty seed line.
func (s *Service) Similar(ctx context.Context, seed *models.Plant) ([]models.Plant, error) {
	plants, err := s.run(ctx, "similar", similarPrompt(seed))
	if err != nil {
		return nil, fmt.Errorf("recommend: similar: %w", err)
	}
	return plants, nil
}

// Search suggests plants matching a free-text description.
func (s *Service) Search(ctx context.Context, query string) ([]models.Plant, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("recommend: search: %w: empty query", apperr.ErrInvalidInput)
	}
	plants, err := s.run(ctx, "search", searchPrompt(query))
	if err != nil {
		return nil, fmt.Errorf("recommend: search: %w", err)
	}
	return plants, nil
}

func (s *Service) run(ctx context.Context, mode, prompt string) ([]models.Plant, error) {
	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error("generation request failed", slog.String("mode", mode), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", apperr.ErrGeneration, err)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: empty candidate text", apperr.ErrNoResults)
	}

	plants := parser.Plants(text)
	s.logger.Debug("generation parsed",
		slog.String("mode", mode),
		slog.Int("plants", len(plants)))

	return s.enricher.Enrich(ctx, plants), nil
}

// ExcludeSaved drops plants whose scientific name matches a saved plant,
// ignoring case.
func ExcludeSaved(plants, saved []models.Plant) []models.Plant {
	names := make(map[string]struct{}, len(saved))
	for _, p := range saved {
		names[strings.ToLower(p.ScientificName)] = struct{}{}
	}
	out := make([]models.Plant, 0, len(plants))
	for _, p := range plants {
		if _, ok := names[strings.ToLower(p.ScientificName)]; ok {
			continue
		}
		out = append(out, p)
	}
	return out
}
