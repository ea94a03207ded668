// Package enrich attaches display images and timestamps to plant suggestions.
package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/sprout/internal/models"
)

// PhotoLookup resolves a species photo URL by scientific name. An empty URL
// with a nil error means the species has no photo.
type PhotoLookup interface {
	LookupPhoto(ctx context.Context, scientificName string) (string, error)
}

// Enricher decorates plants with an image URL and an addedAt timestamp.
type Enricher struct {
	photos   PhotoLookup
	limit    int
	fallback string
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithConcurrency caps in-flight lookups per batch. n <= 0 means unbounded.
func WithConcurrency(n int) Option {
	return func(e *Enricher) { e.limit = n }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Enricher) { e.now = now }
}

// WithFallbackImage overrides models.FallbackImageURL.
func WithFallbackImage(u string) Option {
	return func(e *Enricher) {
		if u != "" {
			e.fallback = u
		}
	}
}

// New creates an Enricher backed by photos.
func New(photos PhotoLookup, logger *slog.Logger, opts ...Option) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Enricher{
		photos:   photos,
		fallback: models.FallbackImageURL,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich looks up every plant's photo concurrently and returns the plants in
// input order with Image and AddedAt set. A failed lookup only affects its
// own record, which gets the fallback image. Enrich never fails.
func (e *Enricher) Enrich(ctx context.Context, plants []models.Plant) []models.Plant {
	out, err := e.enrichBatch(ctx, plants)
	if err != nil {
		e.logger.Error("enrich batch failed, using fallback images", slog.String("error", err.Error()))
		return e.fallbackBatch(plants)
	}
	return out
}

func (e *Enricher) enrichBatch(ctx context.Context, plants []models.Plant) (out []models.Plant, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("enrich: panic: %v", r)
		}
	}()

	out = make([]models.Plant, len(plants))
	var g errgroup.Group
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for i, p := range plants {
		g.Go(func() (gerr error) {
			defer func() {
				if r := recover(); r != nil {
					gerr = fmt.Errorf("enrich: lookup %q panicked: %v", p.ScientificName, r)
				}
			}()
			out[i] = e.decorate(p, e.lookup(ctx, p.ScientificName))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Enricher) lookup(ctx context.Context, scientificName string) string {
	if e.photos == nil {
		return e.fallback
	}
	u, err := e.photos.LookupPhoto(ctx, scientificName)
	if err != nil {
		e.logger.Warn("photo lookup failed",
			slog.String("scientific_name", scientificName),
			slog.String("error", err.Error()))
		return e.fallback
	}
	if u == "" {
		return e.fallback
	}
	return u
}

func (e *Enricher) fallbackBatch(plants []models.Plant) []models.Plant {
	out := make([]models.Plant, len(plants))
	for i, p := range plants {
		out[i] = e.decorate(p, e.fallback)
	}
	return out
}

func (e *Enricher) decorate(p models.Plant, image string) models.Plant {
	p.Image = image
	p.AddedAt = models.Timestamp(e.now())
	return p
}
