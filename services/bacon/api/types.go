// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import (
	"github.com/AleutianAI/kbacon/services/bacon/solver"
)

// ServiceVersion is reported by the health endpoint.
const ServiceVersion = "1.0.0"

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeUnknownNode      = "UNKNOWN_NODE"
	CodeNoPath           = "NO_PATH"
	CodeNoConnectedNodes = "NO_CONNECTED_NODES"
	CodeRateLimited      = "RATE_LIMITED"
	CodeCancelled        = "CANCELLED"
	CodeQueryFailed      = "QUERY_FAILED"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is a stable, machine-readable error code.
	Code string `json:"code,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Generation uint64 `json:"generation"`
}

// StatsResponse is returned by GET /stats.
type StatsResponse struct {
	solver.Stats
	Generation uint64 `json:"generation"`
	LoadedAt   string `json:"loaded_at"`
}

// PathRequest is the query of GET /path.
type PathRequest struct {
	// From is the starting node. Required.
	From string `form:"from" binding:"required"`

	// To is the target node. Default: the reference node.
	To string `form:"to"`
}

// PathResponse is returned by GET /path.
type PathResponse struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Path     []string `json:"path"`
	Distance int      `json:"distance"`
}

// SearchRequest is the query of GET /search.
type SearchRequest struct {
	// Query is the case-insensitive substring. Required.
	Query string `form:"q" binding:"required"`
}

// SearchResponse is returned by GET /search.
type SearchResponse struct {
	Query   string   `json:"query"`
	Results []string `json:"results"`
	Count   int      `json:"count"`
}

// AverageRequest is the optional JSON body of POST /average.
type AverageRequest struct {
	// Target is the node distances are measured to. Default: reference.
	Target string `json:"target"`
}

// TraverseRequest is the query of GET /traverse.
type TraverseRequest struct {
	// Start is the node to traverse from. Required.
	Start string `form:"start" binding:"required"`

	// Order is "bfs" or "dfs". Default: bfs.
	Order string `form:"order" binding:"omitempty,oneof=bfs dfs"`

	// Limit caps the returned nodes. 0 means no cap.
	Limit int `form:"limit" binding:"gte=0"`
}

// TraverseResponse is returned by GET /traverse.
type TraverseResponse struct {
	Start     string   `json:"start"`
	Order     string   `json:"order"`
	Nodes     []string `json:"nodes"`
	Total     int      `json:"total"`
	Truncated bool     `json:"truncated"`
}
