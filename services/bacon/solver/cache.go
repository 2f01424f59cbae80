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
	"slices"

	"golang.org/x/sync/singleflight"

	"github.com/AleutianAI/kbacon/services/bacon/graph"
)

// pathFinder computes a shortest path between two known nodes.
// *graph.Store satisfies it.
type pathFinder interface {
	ShortestPath(ctx context.Context, start, target string) ([]string, error)
}

// pathEntry is a cached result. A nil path means target was unreachable.
type pathEntry struct {
	path []string
}

// pathCache memoizes shortest paths in an LRU and collapses concurrent
// misses on the same pair into one computation.
//
// Thread Safety: Safe for concurrent use.
type pathCache struct {
	finder pathFinder
	lru    *lruCache[string, pathEntry]
	flight singleflight.Group
}

func newPathCache(finder pathFinder, capacity int) *pathCache {
	return &pathCache{
		finder: finder,
		lru:    newLRUCache[string, pathEntry](capacity),
	}
}

func pairKey(start, target string) string {
	return start + "\x00" + target
}

// ShortestPath returns a copy of the cached path, computing it on a miss.
//
// Description:
//
//	The shared computation runs detached from any single caller's
//	cancellation so one cancelled caller cannot fail the others waiting on
//	the same key. Each caller still returns as soon as its own ctx is done.
//	Unreachable pairs are cached too and come back as *graph.NoPathError.
func (c *pathCache) ShortestPath(ctx context.Context, start, target string) ([]string, error) {
	key := pairKey(start, target)
	if entry, ok := c.lru.Get(key); ok {
		recordLookup("path", true)
		return entry.resolve(start, target)
	}
	recordLookup("path", false)

	detached := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(key, func() (interface{}, error) {
		path, err := c.finder.ShortestPath(detached, start, target)
		switch {
		case err == nil:
			c.lru.Set(key, pathEntry{path: path})
		case errors.Is(err, graph.ErrNoPath):
			c.lru.Set(key, pathEntry{})
		default:
			return nil, err
		}
		return pathEntry{path: path}, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(pathEntry).resolve(start, target)
	}
}

func (e pathEntry) resolve(start, target string) ([]string, error) {
	if e.path == nil {
		return nil, &graph.NoPathError{From: start, To: target}
	}
	return slices.Clone(e.path), nil
}
