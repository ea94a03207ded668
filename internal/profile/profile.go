// Package profile persists the one-time preference form.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/sprout/internal/apperr"
	"github.com/starford/sprout/internal/kvstore"
	"github.com/starford/sprout/internal/models"
)

// Store reads and records the preference form state.
type Store struct {
	mu     sync.Mutex
	kv     kvstore.Store
	logger *slog.Logger
}

// NewStore creates a profile store over kv.
func NewStore(kv kvstore.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, logger: logger}
}

// Completed reports whether the form has been submitted.
func (s *Store) Completed(ctx context.Context) (bool, error) {
	v, _, err := s.kv.Get(ctx, kvstore.KeyHasCompletedForm)
	if err != nil {
		return false, fmt.Errorf("profile: completed: %w", err)
	}
	return v == "true", nil
}

// Get returns the stored answers. It returns apperr.ErrNotFound when no form
// data was recorded or it cannot be read.
func (s *Store) Get(ctx context.Context) (models.PreferenceProfile, error) {
	raw, ok, err := s.kv.Get(ctx, kvstore.KeyFormData)
	if err != nil {
		return models.PreferenceProfile{}, fmt.Errorf("profile: get: %w", err)
	}
	if !ok {
		return models.PreferenceProfile{}, apperr.ErrNotFound
	}
	var p models.PreferenceProfile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.logger.Warn("stored form data unreadable", slog.String("error", err.Error()))
		return models.PreferenceProfile{}, apperr.ErrNotFound
	}
	return p, nil
}

// Submit validates and records p. The form is captured once; a second
// submission fails with apperr.ErrAlreadyExists.
func (s *Store) Submit(ctx context.Context, p models.PreferenceProfile) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("profile: %w: %w", apperr.ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	done, err := s.Completed(ctx)
	if err != nil {
		return err
	}
	if done {
		return apperr.ErrAlreadyExists
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("profile: encode: %w", err)
	}
	if err := s.kv.Set(ctx, kvstore.KeyFormData, string(data)); err != nil {
		return fmt.Errorf("profile: save form data: %w", err)
	}
	if err := s.kv.Set(ctx, kvstore.KeyHasCompletedForm, "true"); err != nil {
		return fmt.Errorf("profile: save completed flag: %w", err)
	}
	s.logger.Info("preference form completed",
		slog.String("experience", p.Experience),
		slog.String("purpose", p.Purpose))
	return nil
}
