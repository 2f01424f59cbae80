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
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/kbacon/services/bacon/telemetry"
)

// requestIDKey is the gin context key holding the request ID.
const requestIDKey = "request_id"

// getOrCreateRequestID returns the X-Request-ID header, generating a UUID
// when the client sent none, and echoes it on the response.
func getOrCreateRequestID(c *gin.Context) string {
	if id := c.GetString(requestIDKey); id != "" {
		return id
	}
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	c.Set(requestIDKey, requestID)
	return requestID
}

// RequestLogger assigns request IDs and logs each completed request.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		began := time.Now()
		requestID := getOrCreateRequestID(c)

		c.Next()

		telemetry.LoggerWithTrace(c.Request.Context(), logger).Debug("request completed",
			slog.String("request_id", requestID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(began)),
		)
	}
}

// RateLimit rejects requests with 429 once limiter has no tokens.
//
// Description:
//
//	Uses a token bucket shared by every client. Rejected responses carry
//	a Retry-After header with the whole seconds until the next token.
func RateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter.Allow() {
			c.Next()
			return
		}

		retry := 1
		if limit := limiter.Limit(); limit > 0 && limit != rate.Inf {
			retry = int(math.Ceil(1 / float64(limit)))
		}
		c.Header("Retry-After", strconv.Itoa(retry))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
			Error: "too many aggregate requests, retry later",
			Code:  CodeRateLimited,
		})
	}
}
