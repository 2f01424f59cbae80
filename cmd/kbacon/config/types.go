// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads kbacon configuration from YAML, the environment
// and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/kbacon/pkg/logging"
	"github.com/AleutianAI/kbacon/services/bacon/api"
	"github.com/AleutianAI/kbacon/services/bacon/movies"
	"github.com/AleutianAI/kbacon/services/bacon/solver"
	"github.com/AleutianAI/kbacon/services/bacon/telemetry"
)

// DefaultPath is read when --config is not given, if it exists.
const DefaultPath = "kbacon.yaml"

// DefaultDataFile is the movie list used when none is configured.
const DefaultDataFile = "movieData.txt"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

var validate = validator.New()

// Config is the complete kbacon configuration.
type Config struct {
	// Data is the path of the movie edge list.
	Data string `yaml:"data" validate:"required"`

	// Encoding of Data: latin1 or utf8.
	Encoding string `yaml:"encoding"`

	// Separator between fields of a line. Default: "/".
	Separator string `yaml:"separator"`

	Solver    SolverConfig    `yaml:"solver"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// SolverConfig mirrors solver.Config.
type SolverConfig struct {
	Reference     string `yaml:"reference" validate:"required"`
	SearchLimit   int    `yaml:"search_limit" validate:"gte=1,lte=10000"`
	Workers       int    `yaml:"workers" validate:"gte=0,lte=4096"` // 0 = NumCPU
	PathCacheSize int    `yaml:"path_cache_size" validate:"gte=0"`
	MemoDistances bool   `yaml:"memo_distances"`
	Backend       string `yaml:"backend" validate:"oneof=bfs graphlib"`
}

// ServerConfig configures `kbacon serve`.
type ServerConfig struct {
	Addr           string        `yaml:"addr" validate:"required"`
	AverageRate    float64       `yaml:"average_rate" validate:"gte=0"`
	AverageBurst   int           `yaml:"average_burst" validate:"gte=0"`
	AverageTimeout time.Duration `yaml:"average_timeout" validate:"gte=0"`
	Watch          bool          `yaml:"watch"`
	Debounce       time.Duration `yaml:"debounce" validate:"gte=0"`
}

// LoggingConfig configures pkg/logging.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
	Dir    string `yaml:"dir"`
}

// TelemetryConfig selects exporters.
type TelemetryConfig struct {
	Traces       string `yaml:"traces" validate:"oneof=otlp stdout none"`
	Metrics      string `yaml:"metrics" validate:"oneof=prometheus stdout none"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	OTLPInsecure bool   `yaml:"otlp_insecure"`
	Environment  string `yaml:"environment"`
}

// Default returns the built-in configuration.
func Default() *Config {
	sc := solver.DefaultConfig()
	rc := api.DefaultRouterConfig()
	tc := telemetry.DefaultConfig()

	return &Config{
		Data:      DefaultDataFile,
		Encoding:  string(movies.EncodingLatin1),
		Separator: movies.DefaultSeparator,
		Solver: SolverConfig{
			Reference:     sc.Reference,
			SearchLimit:   sc.SearchLimit,
			PathCacheSize: sc.PathCacheSize,
			Backend:       string(sc.Backend),
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8080",
			AverageRate:    rc.AverageRate,
			AverageBurst:   rc.AverageBurst,
			AverageTimeout: api.DefaultAverageTimeout,
			Debounce:       250 * time.Millisecond,
		},
		Logging: LoggingConfig{Level: "warn"},
		Telemetry: TelemetryConfig{
			Traces:       tc.TraceExporter,
			Metrics:      tc.MetricExporter,
			OTLPEndpoint: tc.OTLPEndpoint,
			OTLPInsecure: tc.OTLPInsecure,
			Environment:  tc.Environment,
		},
	}
}

// Validate checks struct tags and the encoding name.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := movies.ParseEncoding(c.Encoding); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// MovieOptions returns parser options for Data.
func (c *Config) MovieOptions() (movies.Options, error) {
	enc, err := movies.ParseEncoding(c.Encoding)
	if err != nil {
		return movies.Options{}, err
	}
	return movies.Options{Encoding: enc, Separator: c.Separator}, nil
}

// ToSolver converts to solver.Config. Workers of 0 is filled in by
// the solver.
func (c *Config) ToSolver() solver.Config {
	return solver.Config{
		Reference:     c.Solver.Reference,
		SearchLimit:   c.Solver.SearchLimit,
		Workers:       c.Solver.Workers,
		PathCacheSize: c.Solver.PathCacheSize,
		MemoDistances: c.Solver.MemoDistances,
		Backend:       solver.Backend(c.Solver.Backend),
	}
}

// LoggingLevel parses Logging.Level.
func (c *Config) LoggingLevel() (logging.Level, error) {
	return logging.ParseLevel(c.Logging.Level)
}

// ToTelemetry converts to telemetry.Config.
func (c *Config) ToTelemetry(version string) telemetry.Config {
	tc := telemetry.DefaultConfig()
	tc.ServiceVersion = version
	tc.Environment = c.Telemetry.Environment
	tc.TraceExporter = c.Telemetry.Traces
	tc.MetricExporter = c.Telemetry.Metrics
	tc.OTLPEndpoint = c.Telemetry.OTLPEndpoint
	tc.OTLPInsecure = c.Telemetry.OTLPInsecure
	return tc
}

// ToRouter converts Server to api.RouterConfig.
func (c *Config) ToRouter() api.RouterConfig {
	rc := api.DefaultRouterConfig()
	rc.AverageRate = c.Server.AverageRate
	rc.AverageBurst = c.Server.AverageBurst
	rc.AverageTimeout = c.Server.AverageTimeout
	return rc
}
