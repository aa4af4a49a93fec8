// Package configwatch hot-reloads a RouterConfig file, following the same
// shape as codeNERD's internal/core MangleWatcher: an fsnotify.Watcher
// running in its own goroutine, debounced so rapid saves collapse into a
// single reload, with a stats struct callers can poll.
package configwatch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"tierroute/internal/config"
	"tierroute/internal/logging"
)

// Stats tracks watcher activity for diagnostics.
type Stats struct {
	ReloadsTriggered int
	Errors           int
	LastEventTime    time.Time
	LastEventPath    string
}

// Watcher watches a RouterConfig's source file for changes and calls
// OnReload with the freshly loaded config each time it settles.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	path        string
	onReload    func(*config.RouterConfig)
	debounceDur time.Duration
	debounceAt  time.Time
	pending     bool
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	stats       Stats
	log         interface {
		Debugw(msg string, keysAndValues ...interface{})
		Warnw(msg string, keysAndValues ...interface{})
		Infow(msg string, keysAndValues ...interface{})
	}
}

// New builds a Watcher for the config file at path. onReload is invoked
// with the newly loaded config after each debounced write.
func New(path string, onReload func(*config.RouterConfig)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:     fw,
		path:        path,
		onReload:    onReload,
		debounceDur: 300 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		log:         logging.For("configwatch"),
	}, nil
}

// Start begins watching the config file's directory. Non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		w.log.Warnw("initial watch failed", "dir", dir, "error", err)
	} else {
		w.log.Infow("watching config directory", "dir", dir)
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warnw("watch error", "error", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		case <-ticker.C:
			w.maybeReload()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	w.mu.Lock()
	w.pending = true
	w.debounceAt = time.Now()
	w.stats.LastEventTime = w.debounceAt
	w.stats.LastEventPath = event.Name
	w.mu.Unlock()
}

func (w *Watcher) maybeReload() {
	w.mu.Lock()
	if !w.pending || time.Since(w.debounceAt) < w.debounceDur {
		w.mu.Unlock()
		return
	}
	w.pending = false
	w.mu.Unlock()

	cfg, err := config.Load(w.path)
	if err != nil {
		w.log.Warnw("reload failed", "path", w.path, "error", err)
		w.mu.Lock()
		w.stats.Errors++
		w.mu.Unlock()
		return
	}

	w.mu.Lock()
	w.stats.ReloadsTriggered++
	w.mu.Unlock()

	w.log.Infow("config reloaded", "path", w.path)
	if w.onReload != nil {
		w.onReload(cfg)
	}
}

// GetStats returns the current watcher statistics.
func (w *Watcher) GetStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// IsWatching reports whether the watcher is currently running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}
