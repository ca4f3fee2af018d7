package config

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watcher watches a configuration file for changes and reloads it.
// Long-running commands like `table listen` use it to pick up mute
// filter and backend changes without a restart.
type Watcher struct {
	watcher    *fsnotify.Watcher
	path       string
	debounceMs int
	lastChange time.Time
	mu         sync.Mutex
	logger     *logrus.Entry
	onReload   func(*Config)
}

// NewWatcher creates a watcher for the given config file. The debounceMs
// parameter controls how long to wait before processing rapid changes.
// The onReload callback receives the freshly loaded configuration; load
// failures are logged and the previous configuration stays in effect.
func NewWatcher(path string, debounceMs int, logger *logrus.Entry, onReload func(*Config)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory rather than the file itself: editors that
	// write-and-rename would otherwise drop the watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	if debounceMs <= 0 {
		debounceMs = 100
	}

	return &Watcher{
		watcher:    watcher,
		path:       path,
		debounceMs: debounceMs,
		logger:     logger,
		onReload:   onReload,
	}, nil
}

// Start begins watching for config changes. It blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				if w.matches(event.Name) {
					w.handleChange()
				}
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("Watcher error: %v", err)
		case <-ctx.Done():
			w.watcher.Close()
			return
		}
	}
}

func (w *Watcher) matches(name string) bool {
	if filepath.Clean(name) == filepath.Clean(w.path) {
		return true
	}
	// Override files next to the main config feed the same merged result.
	base := filepath.Base(name)
	return strings.HasPrefix(base, "table.override.") &&
		filepath.Dir(filepath.Clean(name)) == filepath.Dir(filepath.Clean(w.path))
}

// handleChange reloads the configuration with debouncing.
func (w *Watcher) handleChange() {
	w.mu.Lock()
	defer w.mu.Unlock()

	elapsed := time.Since(w.lastChange)
	if elapsed < time.Duration(w.debounceMs)*time.Millisecond {
		w.logger.Debugf("Debounced: %s (only %v since last change)", filepath.Base(w.path), elapsed)
		return
	}
	w.lastChange = time.Now()

	w.logger.Infof("Config changed: %s", filepath.Base(w.path))

	cfg, err := LoadFrom(filepath.Dir(w.path))
	if err != nil {
		w.logger.Errorf("Reload failed, keeping previous config: %v", err)
		return
	}

	if w.onReload != nil {
		w.onReload(cfg)
	}
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
