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
	"errors"
)

// Exit codes.
const (
	ExitSuccess = 0 // Command succeeded (even if a search found nothing)
	ExitError   = 1 // Load or query error (missing file, unknown node, no path)
	ExitBadArgs = 2 // Invalid arguments, flags or configuration
)

// exitError carries the process exit code for err.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// badArgs marks err as a usage error.
func badArgs(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: ExitBadArgs, err: err}
}

// exitCode maps err to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitError
}
