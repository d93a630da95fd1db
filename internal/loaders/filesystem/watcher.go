package filesystem

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/logger"
)

// DefaultDebounce is how long the watcher waits for further events
// before reporting a batch of changes.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reports changes to a fixed set of files.
// Editors often replace files by rename, so the parent directories are
// watched and events are filtered by path.
type Watcher struct {
	files    map[string]struct{}
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher for the given files.
func NewWatcher(paths []string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	files := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		files[cleanPath(p)] = struct{}{}
	}
	return &Watcher{files: files, debounce: debounce}
}

// Watch starts watching and returns a channel that receives the sorted
// list of changed files after each quiet period. The channel is closed
// when ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context) (<-chan []string, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	dirs := make(map[string]struct{})
	for f := range w.files {
		dirs[filepath.Dir(f)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	w.mu.Lock()
	w.watcher = fsw
	w.mu.Unlock()

	out := make(chan []string)
	go w.run(ctx, fsw, out)
	return out, nil
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, out chan<- []string) {
	defer close(out)
	defer fsw.Close()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if path, changed := w.handleFsEvent(event); changed {
				pending[path] = struct{}{}
				timer.Reset(w.debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("file watcher: %v", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			pending = make(map[string]struct{})

			select {
			case out <- changed:
			case <-ctx.Done():
				return
			}
		}
	}
}

// handleFsEvent reports whether the event touches a watched file.
// Chmod-only events are ignored.
func (w *Watcher) handleFsEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}
	path := cleanPath(event.Name)
	if _, ok := w.files[path]; !ok {
		return "", false
	}
	logger.Debug("watched file changed: %s (%s)", path, event.Op)
	return path, true
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	w.watcher = nil
	return err
}

func cleanPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
