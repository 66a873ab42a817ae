// Package watcher re-ingests files dropped into a directory.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must be quiet before it is handed over.
const DefaultDebounce = 500 * time.Millisecond

// Watcher debounces create/write events per file.
type Watcher struct {
	debounce time.Duration
	logger   *slog.Logger
	ignore   map[string]struct{}

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithIgnore skips events for the given files, such as the store's own
// snapshot when it lives inside the watched directory.
func WithIgnore(paths ...string) Option {
	return func(w *Watcher) {
		for _, p := range paths {
			if p == "" {
				continue
			}
			w.ignore[absPath(p)] = struct{}{}
		}
	}
}

// New creates a watcher. A non-positive debounce uses DefaultDebounce.
func New(debounce time.Duration, logger *slog.Logger, opts ...Option) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{
		debounce: debounce,
		logger:   logger.With("component", "watcher"),
		ignore:   make(map[string]struct{}),
		timers:   make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch is New(DefaultDebounce, nil).Run.
func Watch(ctx context.Context, dir string, fn func(path string)) error {
	return New(DefaultDebounce, nil).Run(ctx, dir, fn)
}

// Run watches dir until ctx ends. fn is called from a timer goroutine
// once per settled file.
func (w *Watcher) Run(ctx context.Context, dir string, fn func(path string)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("watching directory", "dir", dir, "debounce", w.debounce)

	defer w.stopAll()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if path, ok := w.accept(event); ok {
				w.schedule(ctx, path, fn)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// accept filters an event down to a regular, non-hidden, non-temporary file
// that was created or written and is not in the ignore set.
func (w *Watcher) accept(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if isHidden(event.Name) || isTemp(event.Name) {
		return "", false
	}
	if _, skip := w.ignore[absPath(event.Name)]; skip {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return "", false
	}
	return event.Name, true
}

func (w *Watcher) schedule(ctx context.Context, path string, fn func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.logger.Debug("file settled", "path", path)
		fn(path)
	})
}

func (w *Watcher) stopAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

func isTemp(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".tmp")
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
