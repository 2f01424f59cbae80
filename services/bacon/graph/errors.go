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
)

// Sentinel errors for graph queries.
var (
	// ErrNodeNotFound is returned when a query references an ID that is not
	// a key of the adjacency mapping.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoPath is returned when a search exhausts the reachable set of the
	// start node without discovering the target.
	ErrNoPath = errors.New("no path exists")
)

// Role names the argument a missing node was passed as.
type Role string

const (
	RoleNode   Role = "node"
	RoleStart  Role = "start"
	RoleTarget Role = "target"
)

// NodeNotFoundError provides details about a missing node.
type NodeNotFoundError struct {
	ID   string
	Role Role
}

// Error implements the error interface.
func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("%s node %q not found", e.Role, e.ID)
}

// Unwrap returns the sentinel error.
func (e *NodeNotFoundError) Unwrap() error {
	return ErrNodeNotFound
}

// NoPathError reports an unreachable target.
type NoPathError struct {
	From string
	To   string
}

// Error implements the error interface.
func (e *NoPathError) Error() string {
	return fmt.Sprintf("no path from %q to %q", e.From, e.To)
}

// Unwrap returns the sentinel error.
func (e *NoPathError) Unwrap() error {
	return ErrNoPath
}
