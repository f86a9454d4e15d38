// pattern: Imperative Shell

// package watch monitors open files for external modification and
// reports changes so the editor can warn about stale buffers.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"loom/internal/logging"
)

const (
	pollInterval   = 2 * time.Second
	coalesceWindow = 500 * time.Millisecond
)

type fileState struct {
	modTime time.Time
	size    int64
	missing bool
}

// Watcher tracks open files and invokes a callback when one changes on
// disk. Parent directories are watched via fsnotify (the file itself may
// be replaced by a rename-style save) with a polling safeguard for
// filesystems that swallow events. Notifications per path are coalesced.
type Watcher struct {
	notify  func(path string)
	log     *logging.ScopedLogger
	watcher *fsnotify.Watcher

	mu         sync.Mutex
	files      map[string]fileState
	dirs       map[string]int
	lastNotify map[string]time.Time
	closed     bool
}

// New creates a watcher. The notify callback receives the absolute path
// of each changed file; it must be safe to call from the watch goroutine.
func New(notify func(path string), log *logging.ScopedLogger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		notify:     notify,
		log:        log,
		watcher:    fsw,
		files:      make(map[string]fileState),
		dirs:       make(map[string]int),
		lastNotify: make(map[string]time.Time),
	}, nil
}

// Add starts tracking a file. The current on-disk state becomes the
// baseline, so only later modifications notify. Tracking a path that
// does not exist yet is allowed; its creation counts as a change.
func (w *Watcher) Add(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("watcher is closed")
	}
	if _, ok := w.files[path]; ok {
		return nil
	}

	w.files[path] = statFile(path)

	dir := filepath.Dir(path)
	if w.dirs[dir] == 0 {
		if err := w.watcher.Add(dir); err != nil {
			delete(w.files, path)
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	return nil
}

// Remove stops tracking a file.
func (w *Watcher) Remove(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[path]; !ok {
		return
	}
	delete(w.files, path)
	delete(w.lastNotify, path)

	dir := filepath.Dir(path)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		_ = w.watcher.Remove(dir)
	}
}

// Mark refreshes the baseline for a path without notifying.
// The editor calls it right after saving so its own write is not
// reported as an external change.
func (w *Watcher) Mark(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[path]; !ok {
		return
	}
	w.files[path] = statFile(path)
}

// Start runs the watch loop until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = w.Close()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.checkAndNotify(filepath.Clean(event.Name))
			}

		case <-ticker.C:
			// Polling safeguard: re-stat everything in case events were missed
			w.poll()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if w.log != nil {
				w.log.Warn("watcher error", "error", err)
			}
		}
	}
}

// Close stops the watcher. Tracked state is discarded.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.watcher.Close()
}

func (w *Watcher) poll() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.files))
	for path := range w.files {
		paths = append(paths, path)
	}
	w.mu.Unlock()

	for _, path := range paths {
		w.checkAndNotify(path)
	}
}

func (w *Watcher) checkAndNotify(path string) {
	w.mu.Lock()
	changed := w.updateState(path)
	w.mu.Unlock()

	if changed {
		if w.log != nil {
			w.log.Info("file changed on disk", "path", path)
		}
		w.notify(path)
	}
}

// updateState re-stats a tracked path and records the result. Returns
// true when the caller should notify. Must be called with mu held.
func (w *Watcher) updateState(path string) bool {
	prev, ok := w.files[path]
	if !ok {
		return false
	}

	cur := statFile(path)
	if cur.missing {
		// Deletion notifies once; repeated polls stay quiet
		if prev.missing {
			return false
		}
		w.files[path] = cur
		return w.allowNotify(path)
	}

	if prev.missing || !cur.modTime.Equal(prev.modTime) || cur.size != prev.size {
		w.files[path] = cur
		return w.allowNotify(path)
	}
	return false
}

// allowNotify applies the per-path coalescing window.
// Must be called with mu held.
func (w *Watcher) allowNotify(path string) bool {
	now := time.Now()
	if last, ok := w.lastNotify[path]; ok && now.Sub(last) < coalesceWindow {
		return false
	}
	w.lastNotify[path] = now
	return true
}

func statFile(path string) fileState {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{missing: true}
	}
	return fileState{modTime: info.ModTime(), size: info.Size()}
}
