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
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Report aggregates the distances of every known node to a target.
type Report struct {
	// Target is the node distances were measured to.
	Target string `json:"target"`

	// Average is the mean distance over connected nodes.
	Average float64 `json:"average"`

	// Connected counts nodes with a path to Target.
	Connected int `json:"connected"`

	// Unconnected counts nodes without one.
	Unconnected int `json:"unconnected"`

	// Max is the largest distance found.
	Max int `json:"max"`

	// Farthest lists, sorted, the nodes at distance Max.
	Farthest []string `json:"farthest"`

	// Histogram maps each distance to the number of nodes at it.
	Histogram map[int]int `json:"histogram"`
}

// unreached marks a node with no path in the per-node result slice.
const unreached = -1

// Report computes the distance of every known node to the target.
//
// Description:
//
//	Fans out over the known set with at most Config.Workers concurrent
//	traversals. A node is unconnected when its distance fails with a
//	no-path or unknown-node error; any other error aborts the report.
//	Results are aggregated in sorted node order so the output does not
//	depend on scheduling.
//
// Inputs:
//
//	ctx - Context for cancellation.
//	target - Optional target node ID. Default: Reference().
//
// Outputs:
//
//	*Report - The aggregate.
//	error - *UnknownNodeError if target is absent, ErrNoConnectedNodes if
//	        no node reaches target, or the first aborting error.
func (s *Solver) Report(ctx context.Context, target ...string) (report *Report, err error) {
	to := s.target(target)
	began := time.Now()

	ctx, span := tracer.Start(ctx, "Solver.Report",
		trace.WithAttributes(
			attribute.String("solver.target", to),
			attribute.Int("solver.known", len(s.known)),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		reportDuration.Observe(time.Since(began).Seconds())
		recordQuery("report", err)
	}()

	if !s.store.HasNode(to) {
		return nil, &UnknownNodeError{ID: to}
	}

	dists, err := s.fanOut(ctx, to)
	if err != nil {
		return nil, err
	}

	report = &Report{
		Target:    to,
		Farthest:  make([]string, 0),
		Histogram: make(map[int]int),
	}
	total := 0
	for i, d := range dists {
		if d == unreached {
			report.Unconnected++
			continue
		}
		report.Connected++
		report.Histogram[d]++
		total += d
		switch {
		case d > report.Max:
			report.Max = d
			report.Farthest = append(report.Farthest[:0], s.known[i])
		case d == report.Max:
			report.Farthest = append(report.Farthest, s.known[i])
		}
	}

	if report.Connected == 0 {
		return nil, fmt.Errorf("%w: none of %d nodes reach %q", ErrNoConnectedNodes, len(dists), to)
	}
	report.Average = float64(total) / float64(report.Connected)

	span.SetAttributes(
		attribute.Int("solver.connected", report.Connected),
		attribute.Int("solver.unconnected", report.Unconnected),
		attribute.Float64("solver.average", report.Average),
	)
	s.logger.Debug("report computed",
		slog.String("target", to),
		slog.Int("connected", report.Connected),
		slog.Int("unconnected", report.Unconnected),
		slog.Float64("average", report.Average),
		slog.Duration("elapsed", time.Since(began)),
	)

	return report, nil
}

// fanOut returns the distance of each known node to target, indexed like
// s.known, with unreached for unconnected nodes.
func (s *Solver) fanOut(ctx context.Context, target string) ([]int, error) {
	dists := make([]int, len(s.known))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for i, node := range s.known {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			d, err := s.distance(gctx, node, target)
			switch {
			case err == nil:
				dists[i] = d
			case unreachable(err):
				dists[i] = unreached
			default:
				return fmt.Errorf("distance from %q: %w", node, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return dists, nil
}

// AverageDistance returns the mean distance of connected known nodes to
// the target. See Report for the error contract.
func (s *Solver) AverageDistance(ctx context.Context, target ...string) (float64, error) {
	report, err := s.Report(ctx, target...)
	if err != nil {
		return 0, err
	}
	return report.Average, nil
}
