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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("kbacon.solver")

var (
	solverQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kbacon_solver_queries_total",
		Help: "Total solver queries by operation and outcome",
	}, []string{"op", "outcome"})

	solverCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kbacon_solver_cache_lookups_total",
		Help: "Path cache and distance memo lookups by result",
	}, []string{"cache", "result"})

	reportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kbacon_solver_report_duration_seconds",
		Help:    "Duration of aggregate distance reports",
		Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120},
	})
)

// recordQuery counts one query of op with the outcome derived from err.
func recordQuery(op string, err error) {
	solverQueries.WithLabelValues(op, queryOutcome(err)).Inc()
}

func recordLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	solverCacheLookups.WithLabelValues(cache, result).Inc()
}

func queryOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnknownNode):
		return "unknown_node"
	case errors.Is(err, ErrNoPath):
		return "no_path"
	case errors.Is(err, ErrNoConnectedNodes):
		return "no_connected"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
