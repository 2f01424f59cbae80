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
	"fmt"
	"log/slog"
	"runtime"
	"slices"

	"github.com/go-playground/validator/v10"
)

// Backend selects the shortest-path implementation.
type Backend string

const (
	// BackendBFS uses graph.Store.ShortestPath, whose tie-breaking follows
	// neighbor list order.
	BackendBFS Backend = "bfs"

	// BackendGraphLib uses dominikbraun/graph. Path lengths match
	// BackendBFS; the chosen path may differ when several exist.
	BackendGraphLib Backend = "graphlib"
)

const (
	// DefaultReference is the reference node for distance queries.
	DefaultReference = "Bacon, Kevin"

	// DefaultSearchLimit caps Search results.
	DefaultSearchLimit = 20

	// DefaultPathCacheSize is the LRU path cache capacity.
	DefaultPathCacheSize = 4096
)

var configValidate = validator.New()

// Config configures a Solver.
type Config struct {
	// Reference is the target used when a query names none.
	Reference string `validate:"required"`

	// SearchLimit is the maximum number of Search results.
	SearchLimit int `validate:"gte=1,lte=10000"`

	// Workers bounds the parallel fan-out of Report.
	Workers int `validate:"gte=1,lte=4096"`

	// PathCacheSize is the path cache capacity. 0 disables the cache.
	PathCacheSize int `validate:"gte=0"`

	// MemoDistances keeps computed distances in an in-memory BadgerDB.
	MemoDistances bool

	// Backend selects the shortest-path implementation.
	Backend Backend `validate:"oneof=bfs graphlib"`
}

// DefaultConfig returns the default solver configuration.
func DefaultConfig() Config {
	return Config{
		Reference:     DefaultReference,
		SearchLimit:   DefaultSearchLimit,
		Workers:       runtime.NumCPU(),
		PathCacheSize: DefaultPathCacheSize,
		Backend:       BackendBFS,
	}
}

// withDefaults fills zero fields except PathCacheSize, where 0 is meaningful.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Reference == "" {
		c.Reference = def.Reference
	}
	if c.SearchLimit == 0 {
		c.SearchLimit = def.SearchLimit
	}
	if c.Workers == 0 {
		c.Workers = def.Workers
	}
	if c.Backend == "" {
		c.Backend = def.Backend
	}
	return c
}

// Validate checks c against its validation tags.
//
// Outputs:
//
//	error - Wraps ErrInvalidConfig with the failing fields, or nil.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Option configures optional Solver dependencies.
type Option func(*options)

type options struct {
	logger *slog.Logger
	known  []string
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithKnown supplies the known set, sorted and unique, as produced by the
// parser. The slice is copied.
func WithKnown(ids []string) Option {
	return func(o *options) {
		if ids != nil {
			o.known = slices.Clone(ids)
		}
	}
}
