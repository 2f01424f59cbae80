// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package api serves Bacon-number queries over HTTP.
//
// Routes live under /v1/bacon and read the active solver from a Holder,
// so the data set can be reloaded without restarting the server.
package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/kbacon/services/bacon/graph"
	"github.com/AleutianAI/kbacon/services/bacon/solver"
	"github.com/AleutianAI/kbacon/services/bacon/telemetry"
)

// DefaultAverageTimeout bounds one POST /average computation.
const DefaultAverageTimeout = 2 * time.Minute

// Handlers holds the HTTP handlers.
type Handlers struct {
	holder         *Holder
	logger         *slog.Logger
	averageTimeout time.Duration
}

// NewHandlers creates handlers over holder.
func NewHandlers(holder *Holder, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		holder:         holder,
		logger:         logger,
		averageTimeout: DefaultAverageTimeout,
	}
}

// requestLogger returns a logger tagged with the request and trace IDs.
func (h *Handlers) requestLogger(c *gin.Context, handler string) *slog.Logger {
	return telemetry.LoggerWithTrace(c.Request.Context(), h.logger).With(
		slog.String("request_id", getOrCreateRequestID(c)),
		slog.String("handler", handler),
	)
}

// HandleHealth handles GET /v1/bacon/health.
//
// Response:
//
//	200 OK: HealthResponse
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:     "healthy",
		Version:    ServiceVersion,
		Generation: h.holder.Generation(),
	})
}

// HandleStats handles GET /v1/bacon/stats.
//
// Response:
//
//	200 OK: StatsResponse
func (h *Handlers) HandleStats(c *gin.Context) {
	s, release := h.holder.Acquire()
	defer release()

	c.JSON(http.StatusOK, StatsResponse{
		Stats:      s.Stats(),
		Generation: h.holder.Generation(),
		LoadedAt:   h.holder.LoadedAt().UTC().Format(time.RFC3339),
	})
}

// HandlePath handles GET /v1/bacon/path.
//
// Description:
//
//	Finds the shortest path between two nodes and its Bacon number.
//
// Query Parameters:
//
//	from: Starting node (required)
//	to: Target node (optional, default the reference node)
//
// Response:
//
//	200 OK: PathResponse
//	400 Bad Request: Missing from
//	404 Not Found: UNKNOWN_NODE or NO_PATH
func (h *Handlers) HandlePath(c *gin.Context) {
	logger := h.requestLogger(c, "HandlePath")

	var req PathRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		logger.Warn("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid query parameters: from is required",
			Code:  CodeInvalidRequest,
		})
		return
	}

	s, release := h.holder.Acquire()
	defer release()

	to := req.To
	if to == "" {
		to = s.Reference()
	}

	path, err := s.PathTo(c.Request.Context(), req.From, to)
	if err != nil {
		h.writeError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, PathResponse{
		From:     req.From,
		To:       to,
		Path:     path,
		Distance: solver.NumberFromPath(path),
	})
}

// HandleSearch handles GET /v1/bacon/search.
//
// Query Parameters:
//
//	q: Case-insensitive substring (required)
//
// Response:
//
//	200 OK: SearchResponse (may be empty)
//	400 Bad Request: Missing q
func (h *Handlers) HandleSearch(c *gin.Context) {
	logger := h.requestLogger(c, "HandleSearch")

	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		logger.Warn("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid query parameters: q is required",
			Code:  CodeInvalidRequest,
		})
		return
	}

	s, release := h.holder.Acquire()
	defer release()

	results := s.Search(req.Query)
	c.JSON(http.StatusOK, SearchResponse{
		Query:   req.Query,
		Results: results,
		Count:   len(results),
	})
}

// HandleAverage handles POST /v1/bacon/average.
//
// Description:
//
//	Computes the distance report of every known node to the target. The
//	body is optional; an empty body means the reference node.
//
// Response:
//
//	200 OK: solver.Report
//	400 Bad Request: Malformed body
//	404 Not Found: UNKNOWN_NODE
//	422 Unprocessable Entity: NO_CONNECTED_NODES
//	429 Too Many Requests: RATE_LIMITED (from RateLimit)
func (h *Handlers) HandleAverage(c *gin.Context) {
	logger := h.requestLogger(c, "HandleAverage")

	var req AverageRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.Warn("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body: " + err.Error(),
			Code:  CodeInvalidRequest,
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.averageTimeout)
	defer cancel()

	s, release := h.holder.Acquire()
	defer release()

	report, err := s.Report(ctx, req.Target)
	if err != nil {
		h.writeError(c, logger, err)
		return
	}

	logger.Info("Report computed",
		slog.String("target", report.Target),
		slog.Int("connected", report.Connected),
		slog.Float64("average", report.Average),
	)
	c.JSON(http.StatusOK, report)
}

// HandleTraverse handles GET /v1/bacon/traverse.
//
// Query Parameters:
//
//	start: Node to start from (required)
//	order: bfs or dfs (optional, default bfs)
//	limit: Maximum nodes returned (optional, 0 for all)
//
// Response:
//
//	200 OK: TraverseResponse
//	400 Bad Request: Missing start or bad order
//	404 Not Found: UNKNOWN_NODE
func (h *Handlers) HandleTraverse(c *gin.Context) {
	logger := h.requestLogger(c, "HandleTraverse")

	var req TraverseRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		logger.Warn("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid query parameters: start is required, order must be bfs or dfs",
			Code:  CodeInvalidRequest,
		})
		return
	}
	if req.Order == "" {
		req.Order = "bfs"
	}

	s, release := h.holder.Acquire()
	defer release()

	store := s.Graph()
	var (
		nodes []string
		err   error
	)
	if req.Order == "dfs" {
		nodes, err = store.DepthFirstOrder(c.Request.Context(), req.Start)
	} else {
		nodes, err = store.BreadthFirstOrder(c.Request.Context(), req.Start)
	}
	if err != nil {
		h.writeError(c, logger, err)
		return
	}

	resp := TraverseResponse{
		Start: req.Start,
		Order: req.Order,
		Nodes: nodes,
		Total: len(nodes),
	}
	if req.Limit > 0 && len(nodes) > req.Limit {
		resp.Nodes = nodes[:req.Limit]
		resp.Truncated = true
	}
	c.JSON(http.StatusOK, resp)
}

// writeError maps solver and graph errors to HTTP responses.
func (h *Handlers) writeError(c *gin.Context, logger *slog.Logger, err error) {
	status, code := http.StatusInternalServerError, CodeQueryFailed
	switch {
	case errors.Is(err, solver.ErrUnknownNode), errors.Is(err, graph.ErrNodeNotFound):
		status, code = http.StatusNotFound, CodeUnknownNode
	case errors.Is(err, solver.ErrNoPath):
		status, code = http.StatusNotFound, CodeNoPath
	case errors.Is(err, solver.ErrNoConnectedNodes):
		status, code = http.StatusUnprocessableEntity, CodeNoConnectedNodes
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusServiceUnavailable, CodeCancelled
	}

	if status == http.StatusInternalServerError {
		logger.Error("Query failed", slog.String("error", err.Error()))
	} else {
		logger.Info("Query rejected", slog.String("code", code), slog.String("error", err.Error()))
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}
