// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package watch reports changes to a single data file.
package watch

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

// DefaultDebounce is how long the file must stay quiet before the handler runs.
const DefaultDebounce = 250 * time.Millisecond

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("watcher closed")

// Handler is called with the watched path once a burst of changes settles.
type Handler func(ctx context.Context, path string)

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period after the last event. Default: 250ms.
	Debounce time.Duration

	// Logger receives watch errors. Default: slog.Default().
	Logger *slog.Logger
}

// Watcher watches one file for writes and replacements.
//
// # Description
//
// The parent directory is watched rather than the file itself, so editors
// and deploy tools that replace the file by rename are still seen. Events
// for other files in the directory are ignored. Bursts of events are
// collapsed into one handler call.
//
// # Thread Safety
//
// Run must be called at most once. The handler is called from the Run
// goroutine only, so calls never overlap.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	handler  Handler
	debounce time.Duration
	logger   *slog.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// New starts watching path's directory.
//
// # Inputs
//
//   - path: The data file. It need not exist yet, but its directory must.
//   - handler: Called with path after each settled burst of changes.
//   - opts: Optional configuration (nil uses defaults).
//
// # Outputs
//
//   - *Watcher: Watcher with events already being queued; call Run.
//   - error: Non-nil if the directory cannot be watched.
func New(path string, handler Handler, opts *Options) (*Watcher, error) {
	if handler == nil {
		return nil, errors.New("watch: nil handler")
	}
	if opts == nil {
		opts = &Options{}
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:     abs,
		watcher:  fw,
		handler:  handler,
		debounce: debounce,
		logger:   logger.With(slog.String("component", "watch"), slog.String("path", abs)),
		done:     make(chan struct{}),
	}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run delivers debounced changes until ctx is done or Close is called.
//
// A change still pending when Run stops is dropped.
//
// # Outputs
//
//   - error: ctx.Err() on cancellation, ErrClosed after Close.
func (w *Watcher) Run(ctx context.Context) error {
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return ErrClosed

		case event, ok := <-w.watcher.Events:
			if !ok {
				return ErrClosed
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("change detected", slog.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer, timerC = nil, nil
			w.handler(ctx, w.path)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return ErrClosed
			}
			w.logger.Warn("watch error", slog.String("error", err.Error()))
		}
	}
}

// relevant reports whether event concerns the watched file's content.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// Close stops the watcher. Safe to call multiple times.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}
