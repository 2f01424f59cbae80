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
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the file.
const (
	EnvData      = "KBACON_DATA"
	EnvReference = "KBACON_REFERENCE"
)

// Load reads configuration in precedence order: defaults, the YAML file,
// then the environment.
//
// # Inputs
//
//   - path: YAML file. Empty means DefaultPath, which may be absent.
//     A non-empty path must exist.
//   - getenv: Environment lookup, normally os.Getenv. Nil skips the
//     environment.
//
// # Outputs
//
//   - *Config: Loaded configuration, not yet validated, so callers can
//     apply flag overrides first.
//   - error: Non-nil if the file cannot be read or parsed.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case !explicit && errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if getenv != nil {
		applyEnv(cfg, getenv)
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv(EnvData); v != "" {
		cfg.Data = v
	}
	if v := getenv(EnvReference); v != "" {
		cfg.Solver.Reference = v
	}
}

// Write marshals cfg to path as YAML.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
