// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AleutianAI/kbacon/services/bacon/solver"
)

// Holder publishes the active Solver to request handlers.
//
// Description:
//
//	Handlers call Acquire once per request, so a request always sees one
//	consistent graph even while a reload swaps in a new one. A replaced
//	Solver is retired and closed when its last reference is released,
//	so in-flight requests never run against a closed distance memo.
//
// Thread Safety: Safe for concurrent use.
type Holder struct {
	current    atomic.Pointer[loaded]
	generation atomic.Uint64
	logger     *slog.Logger
}

type loaded struct {
	solver     *solver.Solver
	generation uint64
	at         time.Time

	// refs counts outstanding Acquire calls.
	refs    atomic.Int64
	retired atomic.Bool

	closeOnce sync.Once
	closeErr  error
}

func (l *loaded) release(logger *slog.Logger) {
	if l.refs.Add(-1) == 0 && l.retired.Load() {
		if err := l.close(); err != nil {
			logger.Warn("close replaced solver", slog.String("error", err.Error()))
		}
	}
}

func (l *loaded) retire() (closed bool, err error) {
	l.retired.Store(true)
	if l.refs.Load() > 0 {
		return false, nil
	}
	return true, l.close()
}

func (l *loaded) close() error {
	l.closeOnce.Do(func() {
		if l.solver != nil {
			l.closeErr = l.solver.Close()
		}
	})
	return l.closeErr
}

// NewHolder creates a Holder serving s.
func NewHolder(s *solver.Solver, logger *slog.Logger) *Holder {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Holder{logger: logger}
	h.store(s)
	return h
}

func (h *Holder) store(s *solver.Solver) *loaded {
	next := &loaded{solver: s, generation: h.generation.Add(1), at: time.Now()}
	return h.current.Swap(next)
}

// Acquire returns the active Solver and a release function.
//
// Description:
//
//	The returned Solver stays open until release is called, even if a
//	Swap replaces it in the meantime. Release must be called exactly
//	once.
func (h *Holder) Acquire() (*solver.Solver, func()) {
	for {
		l := h.current.Load()
		l.refs.Add(1)
		if h.current.Load() == l {
			return l.solver, func() { l.release(h.logger) }
		}
		// Swapped between load and increment; retry on the new one.
		l.release(h.logger)
	}
}

// Solver returns the active Solver without holding a reference. Use
// Acquire when the Solver is queried.
func (h *Holder) Solver() *solver.Solver {
	return h.current.Load().solver
}

// Generation returns how many solvers have been installed, starting at 1.
func (h *Holder) Generation() uint64 {
	return h.current.Load().generation
}

// LoadedAt returns when the active Solver was installed.
func (h *Holder) LoadedAt() time.Time {
	return h.current.Load().at
}

// Swap installs s and retires the previous Solver. The previous Solver
// is closed now if unused, otherwise when its last Acquire is released.
func (h *Holder) Swap(s *solver.Solver) {
	prev := h.store(s)
	if prev == nil || prev.solver == nil || prev.solver == s {
		return
	}
	closed, err := prev.retire()
	if err != nil {
		h.logger.Warn("close replaced solver", slog.String("error", err.Error()))
	}
	h.logger.Info("solver swapped",
		slog.Uint64("generation", h.Generation()),
		slog.Int("nodes", s.Graph().NodeCount()),
		slog.Bool("previous_closed", closed),
	)
}

// Close retires the active Solver. It is closed once outstanding
// references are released.
func (h *Holder) Close() error {
	_, err := h.current.Load().retire()
	return err
}
