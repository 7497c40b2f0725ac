// Package resume implements the operator-resume signal for a Paused run: a
// marker file the loop blocks on, the way the teacher's own filesystem
// coordination areas signal across process boundaries rather than over a
// socket or named pipe.
package resume

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher blocks until a marker file is created or written, consuming it
// once observed so a stale marker can't trigger a second, unintended
// resume.
type Watcher struct {
	path string
}

// New returns a Watcher for the marker file at path.
func New(path string) *Watcher {
	return &Watcher{path: path}
}

// Wait blocks until the marker file appears or ctx is canceled. On a
// successful resume it removes the marker file before returning.
func (w *Watcher) Wait(ctx context.Context) error {
	if _, err := os.Stat(w.path); err == nil {
		return os.Remove(w.path)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("resume: creating watcher: %w", err)
	}
	defer fsWatcher.Close()

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("resume: preparing directory: %w", err)
	}
	if err := fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("resume: watching %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fsWatcher.Events:
			if !ok {
				return fmt.Errorf("resume: watcher closed")
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			return os.Remove(w.path)
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return fmt.Errorf("resume: watcher closed")
			}
			return fmt.Errorf("resume: watch error: %w", err)
		}
	}
}

// Signal creates the marker file, requesting resume. Safe to call even if a
// marker already exists.
func Signal(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("resume: preparing directory: %w", err)
	}
	if err := os.WriteFile(path, []byte("resume\n"), 0o644); err != nil {
		return fmt.Errorf("resume: writing marker: %w", err)
	}
	return nil
}
