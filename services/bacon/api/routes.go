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
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"
)

// RouterConfig configures NewRouter.
type RouterConfig struct {
	// ServiceName names the server in traces.
	ServiceName string

	// AverageRate is the sustained rate of POST /average requests per
	// second. 0 disables rate limiting.
	AverageRate float64

	// AverageBurst is the number of POST /average requests allowed at once.
	AverageBurst int

	// AverageTimeout bounds one POST /average. Default: DefaultAverageTimeout.
	AverageTimeout time.Duration

	// Metrics, if non-nil, is served at GET /metrics.
	Metrics http.Handler

	// Logger receives request logs. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultRouterConfig returns one aggregate per second with a burst of 2.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		ServiceName:  "kbacon",
		AverageRate:  1,
		AverageBurst: 2,
	}
}

// RegisterRoutes registers the bacon routes on rg.
//
// Endpoints:
//
//	GET  /v1/bacon/health   - Health check
//	GET  /v1/bacon/stats    - Graph and cache statistics
//	GET  /v1/bacon/path     - Shortest path and Bacon number
//	GET  /v1/bacon/search   - Substring search over known nodes
//	GET  /v1/bacon/traverse - BFS or DFS visit order
//	POST /v1/bacon/average  - Aggregate distance report (rate limited)
//
// Example:
//
//	holder := api.NewHolder(s, logger)
//	v1 := router.Group("/v1")
//	api.RegisterRoutes(v1, api.NewHandlers(holder, logger), nil)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers, averageLimiter *rate.Limiter) {
	bacon := rg.Group("/bacon")
	{
		bacon.GET("/health", handlers.HandleHealth)
		bacon.GET("/stats", handlers.HandleStats)

		// Queries
		bacon.GET("/path", handlers.HandlePath)
		bacon.GET("/search", handlers.HandleSearch)
		bacon.GET("/traverse", handlers.HandleTraverse)

		// Aggregates walk the whole graph; limit them.
		if averageLimiter != nil {
			bacon.POST("/average", RateLimit(averageLimiter), handlers.HandleAverage)
		} else {
			bacon.POST("/average", handlers.HandleAverage)
		}
	}
}

// NewRouter builds a gin engine serving holder.
func NewRouter(holder *Holder, cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "kbacon"
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.ServiceName, otelgin.WithFilter(func(r *http.Request) bool {
		return r.URL.Path != "/metrics" && !strings.HasSuffix(r.URL.Path, "/health")
	})))
	router.Use(RequestLogger(logger))

	var limiter *rate.Limiter
	if cfg.AverageRate > 0 {
		burst := cfg.AverageBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.AverageRate), burst)
	}

	v1 := router.Group("/v1")
	handlers := NewHandlers(holder, logger)
	if cfg.AverageTimeout > 0 {
		handlers.averageTimeout = cfg.AverageTimeout
	}
	RegisterRoutes(v1, handlers, limiter)

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	return router
}
