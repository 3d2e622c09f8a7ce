package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the configuration file for changes and re-applies the
// tunable thresholds on edit. Only warning, critical, and the circuit
// breaker floor are applied live; changes to the cost table or bucket
// geometry are logged as requiring a restart.
//
// Editors often replace files with rename+create, so the watcher watches
// the parent directory and filters by file name. Events are debounced to
// avoid reload storms from multi-write saves.
type Watcher struct {
	path       string
	thresholds *Thresholds
	logger     *slog.Logger

	// debounce interval between an event and the reload it triggers
	debounce time.Duration

	// fingerprint of the cost table as of watch start, for restart-required
	// warnings; costs never apply live
	costFingerprint string

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a configuration watcher for the given file.
// The thresholds instance is the shared object consumed by the pacer and
// the guard; successful reloads update it in place.
func NewWatcher(path string, thresholds *Thresholds, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:       path,
		thresholds: thresholds,
		logger:     logger.With("component", "config.watcher"),
		debounce:   200 * time.Millisecond,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Watch starts watching for file changes. This blocks until the context is
// cancelled or Stop is called.
func (w *Watcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", dir, err)
	}

	// Snapshot the cost table so reloads can flag changes to it. At watch
	// start the file matches the running configuration.
	if cfg, err := LoadConfig(w.path); err == nil {
		w.costFingerprint = costsFingerprint(cfg)
	}

	w.logger.Info("configuration watcher started", "path", w.path)

	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("configuration watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("configuration watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			w.logger.Debug("configuration file event", "op", event.Op.String())

			// Debounce: restart the timer on every event.
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerCh = timer.C

		case <-timerCh:
			timerCh = nil
			w.reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("configuration watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
}

// reload re-reads the configuration file and applies threshold changes.
// A file that fails to load or validate leaves the running thresholds
// untouched.
func (w *Watcher) reload() {
	cfg, err := LoadConfig(w.path)
	if err != nil {
		w.logger.Error("configuration reload failed, keeping current thresholds", "error", err)
		return
	}

	if cfg.Pacing.Capacity != w.thresholds.Capacity() {
		w.logger.Warn("pacing capacity changed on disk; restart required to apply",
			"running", w.thresholds.Capacity(),
			"on_disk", cfg.Pacing.Capacity,
		)
	}

	if fp := costsFingerprint(cfg); w.costFingerprint != "" && fp != w.costFingerprint {
		w.logger.Warn("cost table changed on disk; restart required to apply")
		w.costFingerprint = fp
	}

	err = w.thresholds.Update(
		cfg.Pacing.WarningThreshold,
		cfg.Pacing.CriticalThreshold,
		cfg.Budget.CircuitBreakerFloor,
	)
	if err != nil {
		w.logger.Error("threshold update rejected", "error", err)
		return
	}

	w.logger.Info("thresholds reloaded",
		"warning", cfg.Pacing.WarningThreshold,
		"critical", cfg.Pacing.CriticalThreshold,
		"circuit_breaker_floor", cfg.Budget.CircuitBreakerFloor,
	)
}

// costsFingerprint reduces the cost table to a comparable string, ignoring
// entry order.
func costsFingerprint(cfg *Config) string {
	entries := make([]string, 0, len(cfg.Costs))
	for _, ac := range cfg.Costs {
		entries = append(entries, fmt.Sprintf("%s=%d", ac.Name, ac.Cost))
	}
	sort.Strings(entries)
	return strings.Join(entries, ";")
}
