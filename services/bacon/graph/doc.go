// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph provides an immutable adjacency-list graph with BFS, DFS
// and shortest path queries.
//
// Nodes are plain string IDs. Each node maps to an ordered list of neighbor
// IDs, and that order is preserved verbatim: it decides the visit order of
// every traversal and the tie-break between equally short paths.
//
// # Architecture
//
//	┌─────────────┐    ┌─────────────┐    ┌─────────────────────────┐
//	│  Adjacency  │───▶│    New()    │───▶│          Store          │
//	│ (id → ids)  │    │ (deep copy) │    │ BFS / DFS / ShortestPath│
//	└─────────────┘    └─────────────┘    └─────────────────────────┘
//
// # Traversal Semantics
//
// BreadthFirstOrder and ShortestPath enqueue a neighbor only when it has been
// neither visited nor queued. DepthFirstOrder is stack based: it pops the top,
// marks it visited, then pushes every neighbor that is neither visited nor
// currently on the stack. Its output is the pop order, which is not the same
// as a recursive pre-order walk.
//
// # Thread Safety
//
// A Store is read-only after New returns. All query methods are safe for
// concurrent use; each call allocates its own traversal state.
package graph
