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
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/AleutianAI/kbacon/pkg/ux"
	"github.com/AleutianAI/kbacon/services/bacon/solver"
)

// APIVersion is the schema version of --json output.
const APIVersion = "1.0"

type errorOutput struct {
	APIVersion string `json:"api_version"`
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	ExitCode   int    `json:"exit_code"`
}

type pathOutput struct {
	APIVersion string   `json:"api_version"`
	From       string   `json:"from"`
	To         string   `json:"to"`
	Path       []string `json:"path"`
	Distance   int      `json:"distance"`
}

type numberOutput struct {
	APIVersion string `json:"api_version"`
	From       string `json:"from"`
	To         string `json:"to"`
	Distance   int    `json:"distance"`
}

type searchOutput struct {
	APIVersion string   `json:"api_version"`
	Query      string   `json:"query"`
	Results    []string `json:"results"`
	Count      int      `json:"count"`
}

type averageOutput struct {
	APIVersion string `json:"api_version"`
	*solver.Report
}

type traverseOutput struct {
	APIVersion string   `json:"api_version"`
	Start      string   `json:"start"`
	Order      string   `json:"order"`
	Nodes      []string `json:"nodes"`
	Total      int      `json:"total"`
	Truncated  bool     `json:"truncated"`
}

type statsOutput struct {
	APIVersion string `json:"api_version"`
	Data       string `json:"data"`
	solver.Stats
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// printPath prints path with movies muted, then its distance.
//
// Paths alternate actor, movie, actor, so odd positions are movies when
// the path starts at an actor.
func printPath(p *ux.Printer, path []string) {
	parts := make([]string, len(path))
	for i, id := range path {
		if i%2 == 1 {
			parts[i] = p.Muted(id)
		} else {
			parts[i] = p.Highlight(id)
		}
	}
	p.Line("%s", strings.Join(parts, " "+p.Icon(ux.IconArrow)+" "))
	p.Line("%s %s", p.Muted("distance:"), p.Bold(strconv.Itoa(solver.NumberFromPath(path))))
}

func printSearch(p *ux.Printer, query string, results []string) {
	if len(results) == 0 {
		p.Warning(fmt.Sprintf("no matches for %q", query))
		return
	}
	width := len(strconv.Itoa(len(results)))
	for i, r := range results {
		p.Line("%*d. %s", width, i+1, r)
	}
}

func printReport(p *ux.Printer, r *solver.Report) {
	p.Title("Distances to " + r.Target)
	p.KeyValue([][2]string{
		{"target", r.Target},
		{"average", strconv.FormatFloat(r.Average, 'f', 4, 64)},
		{"connected", strconv.Itoa(r.Connected)},
		{"unconnected", strconv.Itoa(r.Unconnected)},
		{"max", strconv.Itoa(r.Max)},
		{"farthest", strings.Join(r.Farthest, "; ")},
	})

	dists := make([]int, 0, len(r.Histogram))
	peak := 0
	for d, n := range r.Histogram {
		dists = append(dists, d)
		peak = max(peak, n)
	}
	slices.Sort(dists)
	for _, d := range dists {
		n := r.Histogram[d]
		p.Line("%3d %s %d %s", d, p.Muted("|"), n, p.Bar(n, peak, 40))
	}
}

func printTraverse(p *ux.Printer, nodes []string, total int) {
	for _, n := range nodes {
		p.Line("%s", n)
	}
	if rest := total - len(nodes); rest > 0 {
		p.Line("%s", p.Muted(fmt.Sprintf("... %d more", rest)))
	}
}

func printStats(p *ux.Printer, data string, st solver.Stats) {
	p.Title("kbacon " + version)
	p.KeyValue([][2]string{
		{"data", data},
		{"reference", st.Reference},
		{"backend", string(st.Backend)},
		{"nodes", strconv.Itoa(st.Graph.NodeCount)},
		{"edges", strconv.Itoa(st.Graph.EdgeCount)},
		{"known", strconv.Itoa(st.KnownNodes)},
		{"isolated", strconv.Itoa(st.Graph.Isolated)},
		{"max degree", fmt.Sprintf("%d (%s)", st.Graph.MaxDegree, st.Graph.MaxDegreeNode)},
	})
}
