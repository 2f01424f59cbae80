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
	"slices"
	"strings"
)

// Adjacency maps a node ID to its ordered neighbor IDs.
//
// Edges are directed entries. An undirected edge (a, b) is represented by b
// appearing in a's list and a appearing in b's list.
type Adjacency map[string][]string

// AddEdge appends b to a's list and a to b's list.
func (adj Adjacency) AddEdge(a, b string) {
	adj[a] = append(adj[a], b)
	adj[b] = append(adj[b], a)
}

// Store is an immutable graph built from an Adjacency.
//
// Thread Safety: Safe for concurrent use. Nothing mutates a Store after New.
type Store struct {
	adj     Adjacency
	nodes   []string
	entries int
}

// Stats summarizes the shape of a Store.
type Stats struct {
	// NodeCount is the number of keys in the adjacency mapping.
	NodeCount int `json:"node_count"`

	// EntryCount is the number of directed neighbor entries.
	EntryCount int `json:"entry_count"`

	// EdgeCount is EntryCount / 2, exact for symmetric mappings.
	EdgeCount int `json:"edge_count"`

	// Isolated counts nodes with an empty neighbor list.
	Isolated int `json:"isolated"`

	// MaxDegree is the longest neighbor list.
	MaxDegree int `json:"max_degree"`

	// MaxDegreeNode is the first node, in sorted order, with MaxDegree.
	MaxDegreeNode string `json:"max_degree_node,omitempty"`
}

// New creates a Store from adj.
//
// Description:
//
//	Copies the mapping and every neighbor list, so later changes to adj are
//	not visible through the Store. Neighbor order is kept as given; no
//	deduplication or sorting is applied.
//
// Inputs:
//
//	adj - The adjacency mapping. May be nil or empty.
//
// Outputs:
//
//	*Store - The read-only graph. Never nil.
func New(adj Adjacency) *Store {
	copied := make(Adjacency, len(adj))
	nodes := make([]string, 0, len(adj))
	entries := 0
	for id, neighbors := range adj {
		copied[id] = slices.Clone(neighbors)
		nodes = append(nodes, id)
		entries += len(neighbors)
	}
	slices.Sort(nodes)

	return &Store{
		adj:     copied,
		nodes:   nodes,
		entries: entries,
	}
}

// HasNode reports whether id is a key of the adjacency mapping.
func (s *Store) HasNode(id string) bool {
	_, ok := s.adj[id]
	return ok
}

// Neighbors returns a copy of id's ordered neighbor list.
//
// Outputs:
//
//	[]string - Neighbor IDs in insertion order.
//	error - *NodeNotFoundError if id is not a key.
func (s *Store) Neighbors(id string) ([]string, error) {
	neighbors, ok := s.adj[id]
	if !ok {
		return nil, &NodeNotFoundError{ID: id, Role: RoleNode}
	}
	return slices.Clone(neighbors), nil
}

// Nodes returns every node ID in sorted order.
func (s *Store) Nodes() []string {
	return slices.Clone(s.nodes)
}

// NodeCount returns the number of nodes.
func (s *Store) NodeCount() int {
	return len(s.nodes)
}

// EdgeCount returns the number of undirected edges, counting each pair of
// directed entries once.
func (s *Store) EdgeCount() int {
	return s.entries / 2
}

// Stats returns a summary of the graph.
func (s *Store) Stats() Stats {
	st := Stats{
		NodeCount:  len(s.nodes),
		EntryCount: s.entries,
		EdgeCount:  s.entries / 2,
	}
	for _, id := range s.nodes {
		degree := len(s.adj[id])
		if degree == 0 {
			st.Isolated++
		}
		if degree > st.MaxDegree {
			st.MaxDegree = degree
			st.MaxDegreeNode = id
		}
	}
	return st
}

// String renders the mapping sorted by node, with each neighbor list sorted
// and joined by "; ".
//
// Example:
//
//	A: B
//	B: A; C
//	C: B
func (s *Store) String() string {
	var b strings.Builder
	for _, id := range s.nodes {
		neighbors := slices.Clone(s.adj[id])
		slices.Sort(neighbors)
		b.WriteString(id)
		b.WriteString(": ")
		b.WriteString(strings.Join(neighbors, "; "))
		b.WriteString("\n")
	}
	return b.String()
}
