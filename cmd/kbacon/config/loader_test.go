// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/kbacon/services/bacon/movies"
	"github.com/AleutianAI/kbacon/services/bacon/solver"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultDataFile, cfg.Data)
	assert.Equal(t, solver.DefaultReference, cfg.Solver.Reference)
	assert.Equal(t, "bfs", cfg.Solver.Backend)
}

func TestLoad_MissingDefaultFileIsFine(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_FileOverlaysDefaults(t *testing.T) {
	path := writeFile(t, "kbacon.yaml", `
data: /srv/movies.txt
encoding: utf8
solver:
  reference: "Lithgow, John"
  memo_distances: true
server:
  addr: ":9090"
  average_timeout: 30s
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/srv/movies.txt", cfg.Data)
	assert.Equal(t, "Lithgow, John", cfg.Solver.Reference)
	assert.True(t, cfg.Solver.MemoDistances)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.AverageTimeout)

	// Unset keys keep their defaults.
	assert.Equal(t, solver.DefaultSearchLimit, cfg.Solver.SearchLimit)
	assert.Equal(t, movies.DefaultSeparator, cfg.Separator)

	opts, err := cfg.MovieOptions()
	require.NoError(t, err)
	assert.Equal(t, movies.EncodingUTF8, opts.Encoding)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "kbacon.yaml", "data: from-file.txt\nsolver:\n  reference: File\n")

	cfg, err := Load(path, envMap(map[string]string{
		EnvData:      "from-env.txt",
		EnvReference: "Env",
	}))
	require.NoError(t, err)
	assert.Equal(t, "from-env.txt", cfg.Data)
	assert.Equal(t, "Env", cfg.Solver.Reference)

	cfg, err = Load(path, envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, "from-file.txt", cfg.Data)
	assert.Equal(t, "File", cfg.Solver.Reference)
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeFile(t, "kbacon.yaml", "solver: [unclosed\n")
	_, err := Load(path, nil)
	assert.Error(t, err)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty data", func(c *Config) { c.Data = "" }},
		{"empty reference", func(c *Config) { c.Solver.Reference = "" }},
		{"bad backend", func(c *Config) { c.Solver.Backend = "dijkstra" }},
		{"zero search limit", func(c *Config) { c.Solver.SearchLimit = 0 }},
		{"bad encoding", func(c *Config) { c.Encoding = "ebcdic" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad trace exporter", func(c *Config) { c.Telemetry.Traces = "zipkin" }},
		{"negative rate", func(c *Config) { c.Server.AverageRate = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestConversions(t *testing.T) {
	cfg := Default()
	cfg.Solver.Workers = 3
	cfg.Solver.Backend = "graphlib"
	cfg.Server.AverageRate = 5
	cfg.Server.AverageTimeout = time.Minute
	cfg.Telemetry.Traces = "stdout"

	sc := cfg.ToSolver()
	assert.Equal(t, 3, sc.Workers)
	assert.Equal(t, solver.BackendGraphLib, sc.Backend)
	require.NoError(t, sc.Validate())

	rc := cfg.ToRouter()
	assert.Equal(t, 5.0, rc.AverageRate)
	assert.Equal(t, time.Minute, rc.AverageTimeout)

	tc := cfg.ToTelemetry("9.9.9")
	assert.Equal(t, "stdout", tc.TraceExporter)
	assert.Equal(t, "9.9.9", tc.ServiceVersion)
}

func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kbacon.yaml")
	cfg := Default()
	cfg.Data = "roundtrip.txt"
	require.NoError(t, Write(path, cfg))

	loaded, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
