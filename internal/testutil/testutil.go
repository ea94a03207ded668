// Package testutil provides shared test helpers for stores and fakes.
package testutil

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/starford/sprout/internal/kvstore"
	"github.com/starford/sprout/internal/models"
)

// KV creates a file-backed key-value store in a temp directory.
func KV(t *testing.T) *kvstore.FS {
	t.Helper()
	kv, err := kvstore.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return kv
}

// SQLite creates a temporary SQLite key-value store that is closed on cleanup.
func SQLite(t *testing.T) *kvstore.SQLite {
	t.Helper()
	kv, err := kvstore.OpenSQLite(filepath.Join(t.TempDir(), "sprout-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

// ErrWriteFailed is returned by FailingKV once writes are switched off.
var ErrWriteFailed = errors.New("write failed")

// FailingKV wraps a store and fails Set and Delete while FailWrites is on.
type FailingKV struct {
	kvstore.Store
	mu         sync.Mutex
	failWrites bool
}

// FailWrites switches write failures on or off.
func (f *FailingKV) FailWrites(on bool) {
	f.mu.Lock()
	f.failWrites = on
	f.mu.Unlock()
}

func (f *FailingKV) failing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failWrites
}

// Set implements kvstore.Store.
func (f *FailingKV) Set(ctx context.Context, key, value string) error {
	if f.failing() {
		return ErrWriteFailed
	}
	return f.Store.Set(ctx, key, value)
}

// Delete implements kvstore.Store.
func (f *FailingKV) Delete(ctx context.Context, key string) error {
	if f.failing() {
		return ErrWriteFailed
	}
	return f.Store.Delete(ctx, key)
}

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Generator is a scripted generation client. It returns Text or Err and
// records every prompt it receives.
type Generator struct {
	mu      sync.Mutex
	Text    string
	Err     error
	prompts []string
}

// Generate implements the generation client contract.
func (g *Generator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.Text, g.Err
}

// Prompts returns the prompts received so far.
func (g *Generator) Prompts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string{}, g.prompts...)
}

// StampEnricher sets a fixed image and timestamp without any lookups.
type StampEnricher struct {
	Image   string
	AddedAt string
}

// Enrich implements recommend.Enricher.
func (e StampEnricher) Enrich(_ context.Context, plants []models.Plant) []models.Plant {
	out := make([]models.Plant, len(plants))
	for i, p := range plants {
		p.Image = e.Image
		if p.Image == "" {
			p.Image = models.FallbackImageURL
		}
		p.AddedAt = e.AddedAt
		if p.AddedAt == "" {
			p.AddedAt = "2025-01-01T00:00:00.000Z"
		}
		out[i] = p
	}
	return out
}
