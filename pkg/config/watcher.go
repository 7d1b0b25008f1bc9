package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatcherLogger is the logging surface the watcher needs.
type WatcherLogger interface {
	Error(msg string, args ...any)
	Info(msg string, args ...any)
}

// Watcher reloads the authentication document when it changes on disk and
// hands the result to a callback. A document that fails to load is
// reported and otherwise ignored, so the last good configuration stays in
// effect. Only the module chain is meant to be re-activated this way;
// session settings take effect on restart.
type Watcher struct {
	path     string
	onChange func(*Authentication)
	logger   WatcherLogger
}

// NewWatcher creates a watcher for the authentication document at path.
func NewWatcher(path string, logger WatcherLogger, onChange func(*Authentication)) *Watcher {
	return &Watcher{
		path:     path,
		onChange: onChange,
		logger:   logger,
	}
}

// Run watches until the context is cancelled. It watches the parent
// directory rather than the file itself, so atomic replaces (write to a
// temp file, rename over the original) keep being observed.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	w.logger.Info("watching authentication document", "path", w.path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&fsnotify.Write != fsnotify.Write && event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}

			doc, err := LoadAuthentication(w.path)
			if err != nil {
				w.logger.Error("authentication document reload failed, keeping current chain",
					"path", w.path, "error", err.Error())
				continue
			}
			w.onChange(doc)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err.Error())
		}
	}
}
