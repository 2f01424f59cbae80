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
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for graph operations.
var (
	tracer = otel.Tracer("kbacon.graph")
	meter  = otel.Meter("kbacon.graph")
)

var (
	queryLatency metric.Float64Histogram
	queryTotal   metric.Int64Counter
	visitedNodes metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		queryLatency, err = meter.Float64Histogram(
			"kbacon_graph_query_duration_seconds",
			metric.WithDescription("Duration of graph traversal queries"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		queryTotal, err = meter.Int64Counter(
			"kbacon_graph_query_total",
			metric.WithDescription("Total number of graph traversal queries"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		visitedNodes, err = meter.Int64Histogram(
			"kbacon_graph_visited_nodes",
			metric.WithDescription("Nodes dequeued per traversal"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// outcome classifies a query error for metric attributes.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNodeNotFound):
		return "not_found"
	case errors.Is(err, ErrNoPath):
		return "no_path"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}

// startQuerySpan creates a span for a traversal query.
func startQuerySpan(ctx context.Context, queryType, start string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Store."+queryType,
		trace.WithAttributes(
			attribute.String("graph.query_type", queryType),
			attribute.String("graph.start", start),
		),
	)
}

// endQuery records the result of a query on its span and in the metrics.
func endQuery(ctx context.Context, span trace.Span, queryType string, began time.Time, visited int, err error) {
	result := outcome(err)
	span.SetAttributes(
		attribute.Int("graph.visited", visited),
		attribute.String("graph.outcome", result),
	)
	if err != nil && result != "no_path" {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()

	if initMetrics() != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("query_type", queryType),
		attribute.String("outcome", result),
	)
	queryLatency.Record(ctx, time.Since(began).Seconds(), attrs)
	queryTotal.Add(ctx, 1, attrs)
	visitedNodes.Record(ctx, int64(visited), metric.WithAttributes(attribute.String("query_type", queryType)))
}
