package kvstore

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Change kinds passed to a ChangeCallback.
const (
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// ChangeCallback is called for each key file changed on disk.
type ChangeCallback func(kind, key string)

// Watch reports changes to key files under the FS root until ctx is
// cancelled. Atomic writes arrive as a create of the key file, so the store's
// own writes are reported too; consumers compare content to skip them.
func Watch(ctx context.Context, store *FS, logger *slog.Logger, cb ChangeCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(store.Root()); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", store.Root()))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			key, isKey := store.KeyFromPath(ev.Name)
			if !isKey {
				continue
			}

			var kind string
			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				kind = ChangeUpdated
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				kind = ChangeDeleted
			default:
				continue
			}
			logger.Debug("watcher: key changed", slog.String("key", key), slog.String("op", kind))
			if cb != nil {
				cb(kind, key)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
