// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package solver

import (
	"errors"
	"log/slog"

	"github.com/AleutianAI/kbacon/services/bacon/storage/badger"
)

// noPathMarker is stored for nodes with no path to the target.
const noPathMarker = -1

// distanceMemo keeps Bacon numbers keyed by target and node in an
// in-memory BadgerDB. Memo failures are logged and treated as misses.
type distanceMemo struct {
	db     *badger.DB
	logger *slog.Logger
}

func openDistanceMemo(logger *slog.Logger) (*distanceMemo, error) {
	cfg := badger.DefaultConfig()
	cfg.Logger = logger.With(slog.String("component", "distance_memo"))
	db, err := badger.Open(cfg)
	if err != nil {
		return nil, err
	}
	return &distanceMemo{db: db, logger: logger}, nil
}

func memoKey(target, node string) []byte {
	return []byte(target + "\x00" + node)
}

// get returns the memoized distance. reachable is false for a stored
// no-path marker; found is false on a miss.
func (m *distanceMemo) get(target, node string) (dist int, reachable, found bool) {
	v, ok, err := m.db.GetInt(memoKey(target, node))
	if err != nil {
		if !errors.Is(err, badger.ErrClosed) {
			m.logger.Warn("distance memo read failed", slog.String("node", node), slog.String("error", err.Error()))
		}
		return 0, false, false
	}
	recordLookup("memo", ok)
	if !ok {
		return 0, false, false
	}
	if v == noPathMarker {
		return 0, false, true
	}
	return int(v), true, true
}

func (m *distanceMemo) put(target, node string, dist int) {
	if err := m.db.PutInt(memoKey(target, node), int64(dist)); err != nil && !errors.Is(err, badger.ErrClosed) {
		m.logger.Warn("distance memo write failed", slog.String("node", node), slog.String("error", err.Error()))
	}
}

// size counts memoized entries for target.
func (m *distanceMemo) size(target string) int {
	n, err := m.db.Len([]byte(target + "\x00"))
	if err != nil {
		return 0
	}
	return n
}

func (m *distanceMemo) close() error {
	return m.db.Close()
}
