package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/mailcraft/internal/storage"
)

// EventCallback is called after a watcher-driven catalog change.
// kind is one of ChangeCreated, ChangeUpdated, ChangeDeleted.
type EventCallback func(kind string, id string)

const debounce = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the directory holding file, the
// on-disk saved-emails collection, and re-syncs the catalog whenever it
// changes until ctx is cancelled. Bursts of events are debounced into one
// sync. cb (if non-nil) is called for every resulting catalog change.
//
// The directory is watched rather than the file so that atomic
// replace-by-rename writes are seen.
func Watch(ctx context.Context, db EmailIndex, kv storage.Provider, file string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir, name := filepath.Split(file)
	if dir == "" {
		dir = "."
	}
	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("file", file))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			changes, err := Sync(ctx, db, kv, logger)
			if err != nil {
				logger.Warn("watcher: sync failed", slog.String("error", err.Error()))
				continue
			}
			for _, ch := range changes {
				logger.Debug("watcher: indexed", slog.String("id", ch.ID), slog.String("op", ch.Kind))
				if cb != nil {
					cb(ch.Kind, ch.ID)
				}
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
