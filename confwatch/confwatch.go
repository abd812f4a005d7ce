// Copyright (c) 2025, The conftree Authors. All rights reserved. Use of this
// source code is governed by a MIT License that can be found in the LICENSE
// file.

// Package confwatch re-runs work when configuration sources change on disk.
// A Watcher takes the resource list of a completed load and delivers one
// debounced notification per change burst, which callers typically answer
// with another Load.
package confwatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const errPref = "confwatch"

// DefaultDebounceInterval collapses change bursts. Editors often write a
// file several times per save.
const DefaultDebounceInterval = 100 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	// Resources are the files to watch, usually the resource list of a
	// completed load.
	Resources []string

	// DebounceInterval is the quiet period before a change notification
	// fires. Zero means DefaultDebounceInterval.
	DebounceInterval time.Duration
}

// Watcher watches the parent directories of a set of files and reports
// changes to the files themselves. Watching directories instead of the files
// catches atomic-rename saves.
type Watcher struct {
	fsw      *fsnotify.Watcher
	config   Config
	logger   *slog.Logger
	debounce *Debouncer
	watched  map[string]struct{}

	mu      sync.RWMutex
	running bool
}

// New creates a watcher for the given resources. A nil logger falls back to
// slog.Default().
func New(config Config, logger *slog.Logger) (*Watcher, error) {
	if len(config.Resources) == 0 {
		return nil, errors.New(errPref + ": no resources to watch")
	}

	if config.DebounceInterval <= 0 {
		config.DebounceInterval = DefaultDebounceInterval
	}

	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()

	if err != nil {
		return nil, fmt.Errorf("%s: %w", errPref, err)
	}

	watched := make(map[string]struct{}, len(config.Resources))
	dirs := make(map[string]struct{})

	for _, resource := range config.Resources {
		abs, err := filepath.Abs(resource)

		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("%s: %w", errPref, err)
		}

		watched[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("%s: cannot watch %s: %w", errPref, dir, err)
		}
	}

	return &Watcher{
		fsw:      fsw,
		config:   config,
		logger:   logger,
		debounce: NewDebouncer(config.DebounceInterval),
		watched:  watched,
	}, nil
}

// Watch blocks delivering change notifications until the context is
// cancelled or the watcher is stopped. Each change burst invokes onChange
// once; an onChange error is logged and watching continues.
func (w *Watcher) Watch(ctx context.Context, onChange func() error) error {
	w.mu.Lock()

	if w.running {
		w.mu.Unlock()
		return errors.New(errPref + ": watcher already running")
	}

	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	w.logger.Info("watching configuration resources",
		"resources", len(w.watched),
		"debounce", w.config.DebounceInterval)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}

			if !w.shouldProcess(event) {
				continue
			}

			w.logger.Debug("configuration resource changed",
				"path", event.Name, "op", event.Op.String())

			w.debounce.Trigger(func() {
				if err := onChange(); err != nil {
					w.logger.Error("change handler failed", "error", err)
				}
			})
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}

			w.logger.Error("watch error", "error", err)
		}
	}
}

// shouldProcess filters events down to writes, creates, renames and removals
// of the watched files.
func (w *Watcher) shouldProcess(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}

	abs, err := filepath.Abs(event.Name)

	if err != nil {
		return false
	}

	_, ok := w.watched[abs]

	return ok
}

// Stop closes the watcher and cancels any pending notification. Safe to call
// more than once.
func (w *Watcher) Stop() error {
	w.debounce.Stop()
	return w.fsw.Close()
}

// Debouncer collapses rapid triggers into a single callback invocation after
// a quiet interval.
type Debouncer struct {
	mu       sync.Mutex
	timer    *time.Timer
	interval time.Duration
	stopped  bool
}

// NewDebouncer creates a debouncer with the given quiet interval.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger schedules the callback, resetting the quiet period if an earlier
// trigger is still pending. After Stop, triggers are ignored.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, callback)
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
