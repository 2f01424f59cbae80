// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/kbacon/services/bacon/api"
	"github.com/AleutianAI/kbacon/services/bacon/telemetry"
	"github.com/AleutianAI/kbacon/services/bacon/watch"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 10 * time.Second

func (a *app) serveCmd() *cobra.Command {
	var (
		addr      string
		watchData bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the query API over HTTP",
		Long: `Serve the query API under /v1/bacon and Prometheus metrics at /metrics.

With --watch, the data file is reloaded when it changes. A reload that
fails to parse keeps the previous data.

Examples:
  kbacon serve
  kbacon serve --addr :8080 --watch`,
		Args: argsRange(0, 0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("watch") {
				a.cfg.Server.Watch = watchData
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().BoolVar(&watchData, "watch", false, "Reload the data file when it changes")
	return cmd
}

// serve runs the HTTP server until ctx is done.
func (a *app) serve(ctx context.Context) error {
	logger := a.logger.Slog()

	shutdownTelemetry, err := telemetry.Init(ctx, a.cfg.ToTelemetry(version))
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			logger.Warn("telemetry shutdown", slog.String("error", err.Error()))
		}
	}()

	srv, holder, err := a.newServer()
	if err != nil {
		return err
	}
	defer holder.Close()

	if a.cfg.Server.Watch {
		w, err := watch.New(a.cfg.Data, func(context.Context, string) {
			a.reload(holder)
		}, &watch.Options{Debounce: a.cfg.Server.Debounce, Logger: logger})
		if err != nil {
			return fmt.Errorf("watch data file: %w", err)
		}
		defer w.Close()
		go func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, watch.ErrClosed) {
				logger.Warn("watcher stopped", slog.String("error", err.Error()))
			}
		}()
		logger.Info("watching data file", slog.String("path", w.Path()))
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("starting kbacon server", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", srv.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down kbacon server")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newServer loads the data and builds the HTTP server around it.
func (a *app) newServer() (*http.Server, *api.Holder, error) {
	logger := a.logger.Slog()

	s, err := a.loadSolver()
	if err != nil {
		return nil, nil, err
	}
	holder := api.NewHolder(s, logger)

	if a.logger.Slog().Enabled(context.Background(), slog.LevelDebug) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	rc := a.cfg.ToRouter()
	rc.Logger = logger
	rc.Metrics = telemetry.MetricsHandler()
	router := api.NewRouter(holder, rc)

	return &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}, holder, nil
}

// reload rebuilds the solver from the data file and swaps it in. The
// current solver stays active if the rebuild fails.
func (a *app) reload(holder *api.Holder) {
	logger := a.logger.Slog()

	s, err := a.loadSolver()
	if err != nil {
		logger.Warn("reload failed, keeping previous data",
			slog.String("file", a.cfg.Data),
			slog.String("error", err.Error()),
		)
		return
	}
	holder.Swap(s)
	logger.Info("data reloaded",
		slog.String("file", a.cfg.Data),
		slog.Uint64("generation", holder.Generation()),
	)
}
