// Package watcher reports changes of the store file made by any process,
// including hand edits.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before re-reading the store.
const DefaultDebounce = 100 * time.Millisecond

// ChangeCallback is called with the new checksum after the store content
// changed. sum is "" when the file was removed.
type ChangeCallback func(sum string)

// Checksummer fingerprints the current store content.
type Checksummer interface {
	Checksum(ctx context.Context) (string, error)
}

// Watch watches the directory holding storePath until ctx is cancelled.
// The directory rather than the file is watched because every write
// replaces the file through a rename. Events for other files in the
// directory are ignored, and a burst of events yields at most one callback,
// only if the checksum actually changed.
func Watch(ctx context.Context, store Checksummer, storePath string, debounce time.Duration, logger *slog.Logger, cb ChangeCallback) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	target, err := filepath.Abs(storePath)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(target)
	if err := w.Add(dir); err != nil {
		return err
	}

	last, err := store.Checksum(ctx)
	if err != nil {
		logger.Warn("watcher: initial checksum failed", slog.String("error", err.Error()))
	}

	logger.Info("watcher: started", slog.String("path", target))

	var settle *time.Timer
	var settleCh <-chan time.Time

	schedule := func() {
		if settle == nil {
			settle = time.NewTimer(debounce)
			settleCh = settle.C
		} else {
			settle.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if settle != nil {
				settle.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-settleCh:
			sum, sumErr := store.Checksum(ctx)
			if sumErr != nil {
				logger.Warn("watcher: checksum failed", slog.String("error", sumErr.Error()))
				continue
			}
			if sum == last {
				continue
			}
			last = sum
			logger.Debug("watcher: store changed", slog.String("checksum", sum))
			if cb != nil {
				cb(sum)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
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
