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
	"context"
	"errors"
	"fmt"

	graphlib "github.com/dominikbraun/graph"

	"github.com/AleutianAI/kbacon/services/bacon/graph"
)

// graphLibFinder answers shortest-path queries with dominikbraun/graph.
type graphLibFinder struct {
	g graphlib.Graph[string, string]
}

func newGraphLibFinder(store *graph.Store) (*graphLibFinder, error) {
	g, err := store.ToGraphLib()
	if err != nil {
		return nil, fmt.Errorf("convert graph: %w", err)
	}
	return &graphLibFinder{g: g}, nil
}

// ShortestPath runs the library's Dijkstra with unit weights. The
// library does not observe ctx, so it is only checked up front.
func (f *graphLibFinder) ShortestPath(ctx context.Context, start, target string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := graphlib.ShortestPath(f.g, start, target)
	if errors.Is(err, graphlib.ErrTargetNotReachable) {
		return nil, &graph.NoPathError{From: start, To: target}
	}
	if err != nil {
		return nil, fmt.Errorf("graphlib shortest path %q -> %q: %w", start, target, err)
	}
	return path, nil
}

// newFinder returns the path finder for backend.
func newFinder(store *graph.Store, backend Backend) (pathFinder, error) {
	switch backend {
	case BackendBFS:
		return store, nil
	case BackendGraphLib:
		return newGraphLibFinder(store)
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, backend)
	}
}
