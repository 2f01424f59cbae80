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
	"context"
	"slices"
	"time"
)

// contextCheckInterval is how often to check context during traversal.
const contextCheckInterval = 256

// BreadthFirstOrder visits every node reachable from start.
//
// Description:
//
//	Classic queue-based BFS. The front node's neighbors are scanned and any
//	neighbor not yet visited and not already queued is enqueued; then the
//	front is dequeued, marked visited and appended to the result. Nodes come
//	out in non-decreasing distance from start, ties broken by neighbor list
//	order.
//
// Inputs:
//
//	ctx - Context for cancellation
//	start - Node to start from
//
// Outputs:
//
//	[]string - Visited node IDs, each exactly once, in visit order
//	error - *NodeNotFoundError if start is absent, or ctx.Err()
func (s *Store) BreadthFirstOrder(ctx context.Context, start string) (order []string, err error) {
	ctx, span := startQuerySpan(ctx, "BreadthFirstOrder", start)
	began := time.Now()
	defer func() { endQuery(ctx, span, "bfs", began, len(order), err) }()

	if !s.HasNode(start) {
		return nil, &NodeNotFoundError{ID: start, Role: RoleStart}
	}

	// seen holds visited and queued nodes alike.
	seen := map[string]struct{}{start: {}}
	queue := []string{start}
	order = make([]string, 0)

	for steps := 0; len(queue) > 0; steps++ {
		if steps%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		front := queue[0]
		for _, n := range s.adj[front] {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			queue = append(queue, n)
		}
		queue = queue[1:]
		order = append(order, front)
	}

	return order, nil
}

// DepthFirstOrder visits every node reachable from start using a stack.
//
// Description:
//
//	Pops the top of the stack, marks it visited and appends it to the
//	result, then pushes every neighbor that is neither visited nor already
//	on the stack. The result is the pop order.
//
// Inputs:
//
//	ctx - Context for cancellation
//	start - Node to start from
//
// Outputs:
//
//	[]string - Visited node IDs, each exactly once, in pop order
//	error - *NodeNotFoundError if start is absent, or ctx.Err()
func (s *Store) DepthFirstOrder(ctx context.Context, start string) (order []string, err error) {
	ctx, span := startQuerySpan(ctx, "DepthFirstOrder", start)
	began := time.Now()
	defer func() { endQuery(ctx, span, "dfs", began, len(order), err) }()

	if !s.HasNode(start) {
		return nil, &NodeNotFoundError{ID: start, Role: RoleStart}
	}

	visited := make(map[string]struct{})
	onStack := map[string]struct{}{start: {}}
	stack := []string{start}
	order = make([]string, 0)

	for steps := 0; len(stack) > 0; steps++ {
		if steps%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		delete(onStack, top)
		visited[top] = struct{}{}
		order = append(order, top)

		for _, n := range s.adj[top] {
			if _, ok := visited[n]; ok {
				continue
			}
			if _, ok := onStack[n]; ok {
				continue
			}
			onStack[n] = struct{}{}
			stack = append(stack, n)
		}
	}

	return order, nil
}

// ShortestPath finds a minimum-edge path from start to target.
//
// Description:
//
//	BFS from start, recording for every newly discovered node the node it
//	was discovered from. The scan of a neighbor list stops the moment
//	target appears in it. The path is rebuilt by following predecessors
//	back from target. When several shortest paths exist, the one through
//	the earliest-dequeued predecessor wins, which makes the result depend
//	only on neighbor list order.
//
// Inputs:
//
//	ctx - Context for cancellation
//	start - Starting node ID
//	target - Target node ID
//
// Outputs:
//
//	[]string - Node IDs from start to target inclusive; [start] if equal
//	error - *NodeNotFoundError if either end is absent, *NoPathError if
//	        target is unreachable, or ctx.Err()
func (s *Store) ShortestPath(ctx context.Context, start, target string) (path []string, err error) {
	ctx, span := startQuerySpan(ctx, "ShortestPath", start)
	began := time.Now()
	visited := 0
	defer func() { endQuery(ctx, span, "shortest_path", began, visited, err) }()

	if !s.HasNode(start) {
		return nil, &NodeNotFoundError{ID: start, Role: RoleStart}
	}
	if !s.HasNode(target) {
		return nil, &NodeNotFoundError{ID: target, Role: RoleTarget}
	}
	if start == target {
		return []string{start}, nil
	}

	parent := make(map[string]string)
	seen := map[string]struct{}{start: {}}
	queue := []string{start}

	for len(queue) > 0 {
		if visited%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		current := queue[0]
		queue = queue[1:]
		visited++

		for _, n := range s.adj[current] {
			if n == target {
				parent[target] = current
				return reconstructPath(parent, start, target), nil
			}
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			parent[n] = current
			queue = append(queue, n)
		}
	}

	return nil, &NoPathError{From: start, To: target}
}

// reconstructPath follows predecessors from target back to start.
func reconstructPath(parent map[string]string, start, target string) []string {
	path := []string{target}
	for cur := target; cur != start; {
		cur = parent[cur]
		path = append(path, cur)
	}
	slices.Reverse(path)
	return path
}
