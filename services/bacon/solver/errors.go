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
	"fmt"

	"github.com/AleutianAI/kbacon/services/bacon/graph"
)

var (
	// ErrUnknownNode indicates a start or target absent from the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrNoConnectedNodes indicates an aggregate found no node with a path
	// to the target, so no average exists.
	ErrNoConnectedNodes = errors.New("no connected nodes")

	// ErrInvalidConfig indicates a Config failed validation.
	ErrInvalidConfig = errors.New("invalid solver config")

	// ErrNoPath is graph.ErrNoPath, re-exported for callers of this package.
	ErrNoPath = graph.ErrNoPath
)

// UnknownNodeError reports a node ID that is not a key of the graph.
type UnknownNodeError struct {
	ID string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("node %q not found in graph", e.ID)
}

func (e *UnknownNodeError) Unwrap() error {
	return ErrUnknownNode
}

// unreachable reports whether err means "no path to the target" as opposed
// to a failure that should abort an aggregate.
func unreachable(err error) bool {
	return errors.Is(err, ErrNoPath) ||
		errors.Is(err, ErrUnknownNode) ||
		errors.Is(err, graph.ErrNodeNotFound)
}

func isNoPath(err error) bool {
	return errors.Is(err, ErrNoPath)
}
