// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package solver answers Bacon-number queries over a movie/actor graph.
//
// A Solver wraps an immutable graph.Store together with the sorted set of
// identifiers that appear as neighbors ("known" nodes). It computes
// shortest paths to a configurable reference node, the movie-hop distance
// along those paths, substring searches over known nodes and an aggregate
// report of distances across every known node.
//
// Thread Safety: A Solver is safe for concurrent use. Its caches are
// internally synchronized and the graph is never mutated.
package solver

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/AleutianAI/kbacon/services/bacon/graph"
	"github.com/AleutianAI/kbacon/services/bacon/movies"
)

// Solver computes Bacon numbers over a graph.
type Solver struct {
	cfg    Config
	store  *graph.Store
	known  []string
	folded []string
	finder pathFinder
	paths  *pathCache
	memo   *distanceMemo
	logger *slog.Logger

	closeOnce sync.Once
	closeErr  error
	closed    atomic.Bool
}

// Stats summarizes a Solver.
type Stats struct {
	Reference  string      `json:"reference"`
	Backend    Backend     `json:"backend"`
	Graph      graph.Stats `json:"graph"`
	KnownNodes int         `json:"known_nodes"`

	// PathCacheEntries, PathCacheHits and PathCacheMisses are zero when
	// the path cache is disabled.
	PathCacheEntries int   `json:"path_cache_entries"`
	PathCacheHits    int64 `json:"path_cache_hits"`
	PathCacheMisses  int64 `json:"path_cache_misses"`

	// MemoEntries counts memoized distances to Reference.
	MemoEntries int `json:"memo_entries"`
}

// New builds a Solver over adj.
//
// Description:
//
//	Copies adj into a graph.Store and takes the known set from WithKnown,
//	or computes it with movies.KnownIDs: every identifier that appears in
//	some neighbor list, sorted. Keys with an empty neighbor list that no
//	other node points at are not known.
//	Zero Config fields other than PathCacheSize take their defaults.
//
// Inputs:
//
//	adj - Adjacency mapping. Not retained.
//	cfg - Solver configuration.
//	opts - Optional dependencies such as WithLogger.
//
// Outputs:
//
//	*Solver - The solver. Call Close when done.
//	error - Wraps ErrInvalidConfig if cfg is invalid, or a memo open error.
func New(adj graph.Adjacency, cfg Config, opts ...Option) (*Solver, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store := graph.New(adj)
	finder, err := newFinder(store, cfg.Backend)
	if err != nil {
		return nil, err
	}

	known := o.known
	if known == nil {
		known = movies.KnownIDs(adj)
	}
	folded := make([]string, len(known))
	for i, id := range known {
		folded[i] = strings.ToLower(id)
	}

	s := &Solver{
		cfg:    cfg,
		store:  store,
		known:  known,
		folded: folded,
		finder: finder,
		logger: o.logger.With(slog.String("component", "solver")),
	}

	if cfg.PathCacheSize > 0 {
		s.paths = newPathCache(finder, cfg.PathCacheSize)
	}
	if cfg.MemoDistances {
		memo, err := openDistanceMemo(s.logger)
		if err != nil {
			return nil, fmt.Errorf("open distance memo: %w", err)
		}
		s.memo = memo
	}

	s.logger.Info("solver ready",
		slog.Int("nodes", store.NodeCount()),
		slog.Int("edges", store.EdgeCount()),
		slog.Int("known", len(known)),
		slog.String("reference", cfg.Reference),
		slog.String("backend", string(cfg.Backend)),
		slog.Bool("reference_present", store.HasNode(cfg.Reference)),
	)

	return s, nil
}

// NewFromText parses an edge list already decoded to text and builds a
// Solver over it.
func NewFromText(text string, cfg Config, opts ...Option) (*Solver, error) {
	res := movies.ParseString(text)
	return New(res.Adjacency, cfg, append([]Option{WithKnown(res.Known)}, opts...)...)
}

// Reference returns the configured reference node.
func (s *Solver) Reference() string {
	return s.cfg.Reference
}

// Config returns the effective configuration.
func (s *Solver) Config() Config {
	return s.cfg
}

// Graph returns the underlying read-only graph.
func (s *Solver) Graph() *graph.Store {
	return s.store
}

// Known returns a copy of the sorted known set.
func (s *Solver) Known() []string {
	return slices.Clone(s.known)
}

// target resolves an optional target argument to the reference node.
func (s *Solver) target(target []string) string {
	if len(target) > 0 && target[0] != "" {
		return target[0]
	}
	return s.cfg.Reference
}

// PathTo returns a shortest path from start to the target.
//
// Description:
//
//	Both ends are checked before any traversal. The target defaults to
//	the reference node. With the BFS backend, ties between equally short
//	paths are broken by neighbor list order.
//
// Inputs:
//
//	ctx - Context for cancellation.
//	start - Starting node ID.
//	target - Optional target node ID. Default: Reference().
//
// Outputs:
//
//	[]string - Node IDs from start to target inclusive.
//	error - *UnknownNodeError if either end is absent, *graph.NoPathError
//	        if target is unreachable, or ctx.Err().
func (s *Solver) PathTo(ctx context.Context, start string, target ...string) (path []string, err error) {
	defer func() { recordQuery("path", err) }()
	return s.pathTo(ctx, start, s.target(target))
}

func (s *Solver) pathTo(ctx context.Context, start, target string) ([]string, error) {
	if !s.store.HasNode(start) {
		return nil, &UnknownNodeError{ID: start}
	}
	if !s.store.HasNode(target) {
		return nil, &UnknownNodeError{ID: target}
	}
	if s.paths != nil {
		return s.paths.ShortestPath(ctx, start, target)
	}
	return s.finder.ShortestPath(ctx, start, target)
}

// NumberFromPath converts a path into a movie-hop count: the number of
// elements at even indexes, minus one.
//
// Example:
//
//	NumberFromPath([]string{"Alice", "Movie1", "Bob", "Movie2", "Carol"}) == 2
func NumberFromPath(path []string) int {
	return (len(path)+1)/2 - 1
}

// Distance returns the Bacon number of start relative to the target.
//
// Outputs:
//
//	int - NumberFromPath of the shortest path.
//	error - As PathTo.
func (s *Solver) Distance(ctx context.Context, start string, target ...string) (dist int, err error) {
	defer func() { recordQuery("distance", err) }()
	return s.distance(ctx, start, s.target(target))
}

func (s *Solver) distance(ctx context.Context, start, target string) (int, error) {
	if s.memo != nil && s.store.HasNode(start) && s.store.HasNode(target) {
		if d, reachable, found := s.memo.get(target, start); found {
			if !reachable {
				return 0, &graph.NoPathError{From: start, To: target}
			}
			return d, nil
		}
	}

	path, err := s.pathTo(ctx, start, target)
	if err != nil {
		if s.memo != nil && isNoPath(err) {
			s.memo.put(target, start, noPathMarker)
		}
		return 0, err
	}

	d := NumberFromPath(path)
	if s.memo != nil {
		s.memo.put(target, start, d)
	}
	return d, nil
}

// Search returns known IDs containing query, case-insensitively.
//
// Description:
//
//	Scans the known set in sorted order and returns the first
//	Config.SearchLimit matches. An empty query matches everything.
func (s *Solver) Search(query string) []string {
	q := strings.ToLower(query)
	results := make([]string, 0)
	for i, folded := range s.folded {
		if !strings.Contains(folded, q) {
			continue
		}
		results = append(results, s.known[i])
		if len(results) == s.cfg.SearchLimit {
			break
		}
	}
	recordQuery("search", nil)
	return results
}

// Stats returns graph and cache statistics.
func (s *Solver) Stats() Stats {
	st := Stats{
		Reference:  s.cfg.Reference,
		Backend:    s.cfg.Backend,
		Graph:      s.store.Stats(),
		KnownNodes: len(s.known),
	}
	if s.paths != nil {
		st.PathCacheEntries = s.paths.lru.Len()
		st.PathCacheHits, st.PathCacheMisses, _ = s.paths.lru.Stats()
	}
	if s.memo != nil {
		st.MemoEntries = s.memo.size(s.cfg.Reference)
	}
	return st
}

// Close releases the distance memo. Queries keep working after Close
// without the memo. Safe to call multiple times.
func (s *Solver) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		if s.memo != nil {
			s.closeErr = s.memo.close()
		}
	})
	return s.closeErr
}

// Closed reports whether Close has been called.
func (s *Solver) Closed() bool {
	return s.closed.Load()
}
