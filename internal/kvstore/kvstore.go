// Package kvstore provides the key-value persistence layer that holds the
// saved-plant list and the preference form state.
package kvstore

import (
	"context"
	"fmt"
)

// Persistent keys.
const (
	KeySavedPlants      = "savedPlants"
	KeyHasCompletedForm = "hasCompletedForm"
	KeyFormData         = "formData"
)

// Drivers.
const (
	DriverSQLite = "sqlite"
	DriverFS     = "fs"
)

// Store is a string-to-string persistent map. Writes to the same key are
// last-write-wins.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

var (
	_ Store = (*FS)(nil)
	_ Store = (*SQLite)(nil)
)

// Open opens a store with the named driver rooted at path.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverSQLite, "":
		return OpenSQLite(path)
	case DriverFS:
		return NewFS(path)
	default:
		return nil, fmt.Errorf("kvstore: unknown driver %q", driver)
	}
}
