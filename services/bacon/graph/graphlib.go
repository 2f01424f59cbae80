// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"errors"
	"fmt"

	graphlib "github.com/dominikbraun/graph"
)

// ToGraphLib converts the Store into an undirected dominikbraun/graph.
//
// Description:
//
//	Every key and every neighbor becomes a vertex; every directed entry
//	becomes an undirected edge, with the mirrored entry collapsing onto it.
//	Self-loops are dropped since they never shorten a path. Neighbor order
//	is not preserved by the library, so paths found on the result may differ
//	from ShortestPath when several shortest paths exist; lengths agree.
//
// Outputs:
//
//	graphlib.Graph[string, string] - The converted graph.
//	error - Non-nil if the library rejects a vertex or edge.
func (s *Store) ToGraphLib() (graphlib.Graph[string, string], error) {
	g := graphlib.New(graphlib.StringHash)

	addVertex := func(id string) error {
		if err := g.AddVertex(id); err != nil && !errors.Is(err, graphlib.ErrVertexAlreadyExists) {
			return fmt.Errorf("add vertex %q: %w", id, err)
		}
		return nil
	}

	for _, id := range s.nodes {
		if err := addVertex(id); err != nil {
			return nil, err
		}
	}

	for _, id := range s.nodes {
		for _, n := range s.adj[id] {
			if n == id {
				continue
			}
			if err := addVertex(n); err != nil {
				return nil, err
			}
			if err := g.AddEdge(id, n); err != nil && !errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
				return nil, fmt.Errorf("add edge %q -> %q: %w", id, n, err)
			}
		}
	}

	return g, nil
}
