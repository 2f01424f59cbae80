// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command kbacon answers Bacon-number queries over a movie/actor list.
//
// Usage:
//
//	kbacon path "Myers, Mike"
//	kbacon number "Lithgow, John" "Murphy, Eddie"
//	kbacon search bacon
//	kbacon average
//	kbacon traverse "Shrek" --order dfs --limit 20
//	kbacon stats
//	kbacon serve --addr :8080 --watch
package main

import (
	"os"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "1.0.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
