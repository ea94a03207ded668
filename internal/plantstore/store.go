// Package plantstore holds the user's saved plants and mirrors every change
// to the key-value store.
package plantstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/sprout/internal/kvstore"
	"github.com/starford/sprout/internal/models"
)

// Change event kinds.
const (
	EventAdded    = "plant.added"
	EventRemoved  = "plant.removed"
	EventReloaded = "plants.reloaded"
	EventCleared  = "plants.cleared"
)

// ChangeFunc is notified after a change has been persisted.
type ChangeFunc func(kind, scientificName string)

// Store is the single authoritative saved-plant collection. Identity is the
// exact scientific name.
type Store struct {
	mu       sync.Mutex
	kv       kvstore.Store
	plants   []models.Plant
	lastSum  string // checksum of the last value read or written, "" when absent
	loaded   bool
	onChange ChangeFunc
	logger   *slog.Logger
}

// Load rehydrates the collection from kv. A missing or corrupt value starts
// an empty collection.
func Load(ctx context.Context, kv kvstore.Store, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{kv: kv, logger: logger}
	if _, err := s.reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// OnChange registers fn to be called after each persisted change.
func (s *Store) OnChange(fn ChangeFunc) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// List returns a copy of the collection in insertion order.
func (s *Store) List() []models.Plant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Plant{}, s.plants...)
}

// Len returns the number of saved plants.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.plants)
}

// First returns the earliest saved plant, or nil when empty.
func (s *Store) First() *models.Plant {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.plants) == 0 {
		return nil
	}
	p := s.plants[0]
	return &p
}

// Get returns the saved plant with the given scientific name.
func (s *Store) Get(scientificName string) (models.Plant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(scientificName)
	if i < 0 {
		return models.Plant{}, false
	}
	return s.plants[i], true
}

// Contains reports whether a plant with scientificName is saved.
func (s *Store) Contains(scientificName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(scientificName) >= 0
}

// Add appends p unless a plant with the same scientific name is saved.
// It reports whether the collection changed.
func (s *Store) Add(ctx context.Context, p models.Plant) (bool, error) {
	s.mu.Lock()
	if s.indexOf(p.ScientificName) >= 0 {
		s.mu.Unlock()
		return false, nil
	}
	next := append(append(make([]models.Plant, 0, len(s.plants)+1), s.plants...), p)
	if err := s.commit(ctx, next); err != nil {
		s.mu.Unlock()
		return false, err
	}
	fn := s.onChange
	s.mu.Unlock()

	s.logger.Debug("plant saved", slog.String("scientific_name", p.ScientificName))
	if fn != nil {
		fn(EventAdded, p.ScientificName)
	}
	return true, nil
}

// Remove deletes every plant whose scientific name equals scientificName and
// returns how many were removed.
func (s *Store) Remove(ctx context.Context, scientificName string) (int, error) {
	s.mu.Lock()
	next := make([]models.Plant, 0, len(s.plants))
	for _, p := range s.plants {
		if p.ScientificName != scientificName {
			next = append(next, p)
		}
	}
	removed := len(s.plants) - len(next)
	if removed == 0 {
		s.mu.Unlock()
		return 0, nil
	}
	if err := s.commit(ctx, next); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	fn := s.onChange
	s.mu.Unlock()

	s.logger.Debug("plant removed", slog.String("scientific_name", scientificName))
	if fn != nil {
		fn(EventRemoved, scientificName)
	}
	return removed, nil
}

// Clear deletes the persisted collection and empties the store. It returns
// how many plants were removed.
func (s *Store) Clear(ctx context.Context) (int, error) {
	s.mu.Lock()
	if err := s.kv.Delete(ctx, kvstore.KeySavedPlants); err != nil {
		s.mu.Unlock()
		return 0, fmt.Errorf("plantstore: clear: %w", err)
	}
	n := len(s.plants)
	s.plants = []models.Plant{}
	s.lastSum = ""
	fn := s.onChange
	s.mu.Unlock()

	s.logger.Info("saved plants cleared", slog.Int("count", n))
	if fn != nil {
		fn(EventCleared, "")
	}
	return n, nil
}

// RemovePlant removes by p's scientific name.
func (s *Store) RemovePlant(ctx context.Context, p models.Plant) (int, error) {
	return s.Remove(ctx, p.ScientificName)
}

// Reload re-reads the persisted collection, e.g. after the storage was edited
// or cleared externally. It reports whether the in-memory state changed.
func (s *Store) Reload(ctx context.Context) (bool, error) {
	s.mu.Lock()
	changed, err := s.reload(ctx)
	fn := s.onChange
	s.mu.Unlock()
	if err != nil {
		return false, err
	}
	if changed && fn != nil {
		fn(EventReloaded, "")
	}
	return changed, nil
}

// reload must be called with mu held (or before the store is shared). On the
// initial load an unreadable value starts an empty collection. Later reloads
// keep the current state and lastSum so the next complete write is picked up.
func (s *Store) reload(ctx context.Context) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, kvstore.KeySavedPlants)
	if err != nil {
		return false, fmt.Errorf("plantstore: load: %w", err)
	}
	sum := ""
	if ok {
		sum = digest([]byte(raw))
	}
	if s.loaded && sum == s.lastSum {
		return false, nil
	}

	plants := []models.Plant{}
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &plants); err != nil {
			if s.loaded {
				s.logger.Warn("saved plants unreadable, keeping current state", slog.String("error", err.Error()))
				return false, nil
			}
			s.logger.Warn("saved plants unreadable, starting empty", slog.String("error", err.Error()))
			plants = []models.Plant{}
		}
	}
	if plants == nil {
		plants = []models.Plant{}
	}
	s.loaded = true
	s.lastSum = sum
	s.plants = plants
	return true, nil
}

// commit persists next and then makes it the in-memory state. On a write
// failure nothing changes. Callers hold mu.
func (s *Store) commit(ctx context.Context, next []models.Plant) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("plantstore: encode: %w", err)
	}
	if err := s.kv.Set(ctx, kvstore.KeySavedPlants, string(data)); err != nil {
		return fmt.Errorf("plantstore: persist: %w", err)
	}
	s.plants = next
	s.lastSum = digest(data)
	return nil
}

func (s *Store) indexOf(scientificName string) int {
	for i, p := range s.plants {
		if p.ScientificName == scientificName {
			return i
		}
	}
	return -1
}

// digest identifies a persisted value so reloads can skip the store's own writes.
func digest(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
