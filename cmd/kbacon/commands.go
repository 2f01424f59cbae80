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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/kbacon/services/bacon/solver"
)

// argsRange validates the positional argument count as a usage error.
func argsRange(lo, hi int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return badArgs(cobra.RangeArgs(lo, hi)(cmd, args))
	}
}

func optional(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func (a *app) pathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path FROM [TO]",
		Short: "Print the shortest path between two nodes",
		Long: `Print the shortest path from FROM to TO (default: the reference node)
and its distance. Names must match exactly; use 'kbacon search' to find them.

Examples:
  kbacon path "Myers, Mike"
  kbacon path "Singer, Lori" "Lithgow, John" --json`,
		Args: argsRange(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSolver()
			if err != nil {
				return err
			}
			defer s.Close()

			from, to := args[0], optional(args, 1)
			if to == "" {
				to = s.Reference()
			}
			path, err := s.PathTo(cmd.Context(), from, to)
			if err != nil {
				return err
			}

			if a.jsonOut {
				return writeJSON(a.stdout, pathOutput{
					APIVersion: APIVersion,
					From:       from,
					To:         to,
					Path:       path,
					Distance:   solver.NumberFromPath(path),
				})
			}
			printPath(a.out, path)
			return nil
		},
	}
}

func (a *app) numberCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "number ACTOR [TARGET]",
		Short: "Print the Bacon number of an actor",
		Long: `Print the distance from ACTOR to TARGET (default: the reference node),
counting one step per shared movie.

Examples:
  kbacon number "Myers, Mike"
  kbacon number "Myers, Mike" "Lithgow, John"`,
		Args: argsRange(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSolver()
			if err != nil {
				return err
			}
			defer s.Close()

			from, to := args[0], optional(args, 1)
			if to == "" {
				to = s.Reference()
			}
			d, err := s.Distance(cmd.Context(), from, to)
			if err != nil {
				return err
			}

			if a.jsonOut {
				return writeJSON(a.stdout, numberOutput{APIVersion: APIVersion, From: from, To: to, Distance: d})
			}
			a.out.Line("%s", a.out.Highlight(fmt.Sprint(d)))
			return nil
		},
	}
}

func (a *app) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY",
		Short: "Find node names containing QUERY",
		Long: `List known names containing QUERY, case-insensitively, in sorted order.
At most solver.search_limit names are shown.

Examples:
  kbacon search bacon
  kbacon search "lori" --json`,
		Args: argsRange(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSolver()
			if err != nil {
				return err
			}
			defer s.Close()

			results := s.Search(args[0])
			if a.jsonOut {
				return writeJSON(a.stdout, searchOutput{
					APIVersion: APIVersion,
					Query:      args[0],
					Results:    results,
					Count:      len(results),
				})
			}
			printSearch(a.out, args[0], results)
			return nil
		},
	}
}

func (a *app) averageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "average [TARGET]",
		Short: "Report the average distance of every node to TARGET",
		Long: `Compute the distance from every known node to TARGET (default: the
reference node). Unreachable nodes are counted separately and excluded
from the average.

Examples:
  kbacon average
  kbacon average "Lithgow, John" --json`,
		Args: argsRange(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSolver()
			if err != nil {
				return err
			}
			defer s.Close()

			report, err := s.Report(cmd.Context(), optional(args, 0))
			if err != nil {
				return err
			}

			if a.jsonOut {
				return writeJSON(a.stdout, averageOutput{APIVersion: APIVersion, Report: report})
			}
			printReport(a.out, report)
			return nil
		},
	}
}

func (a *app) traverseCmd() *cobra.Command {
	var (
		order string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "traverse START",
		Short: "Print every node reachable from START",
		Long: `Print the nodes reachable from START in breadth-first (default) or
depth-first order.

Examples:
  kbacon traverse "Footloose"
  kbacon traverse "Footloose" --order dfs --limit 20`,
		Args: argsRange(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if order != "bfs" && order != "dfs" {
				return badArgs(fmt.Errorf("invalid --order %q: want bfs or dfs", order))
			}
			if limit < 0 {
				return badArgs(fmt.Errorf("invalid --limit %d: must be >= 0", limit))
			}

			s, err := a.loadSolver()
			if err != nil {
				return err
			}
			defer s.Close()

			store := s.Graph()
			var nodes []string
			if order == "dfs" {
				nodes, err = store.DepthFirstOrder(cmd.Context(), args[0])
			} else {
				nodes, err = store.BreadthFirstOrder(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}

			total := len(nodes)
			if limit > 0 && total > limit {
				nodes = nodes[:limit]
			}
			if a.jsonOut {
				return writeJSON(a.stdout, traverseOutput{
					APIVersion: APIVersion,
					Start:      args[0],
					Order:      order,
					Nodes:      nodes,
					Total:      total,
					Truncated:  len(nodes) < total,
				})
			}
			printTraverse(a.out, nodes, total)
			return nil
		},
	}
	cmd.Flags().StringVar(&order, "order", "bfs", "Traversal order: bfs or dfs")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum nodes printed (0 = all)")
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print graph statistics",
		Args:  argsRange(0, 0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.loadSolver()
			if err != nil {
				return err
			}
			defer s.Close()

			st := s.Stats()
			if a.jsonOut {
				return writeJSON(a.stdout, statsOutput{APIVersion: APIVersion, Data: a.cfg.Data, Stats: st})
			}
			printStats(a.out, a.cfg.Data, st)
			return nil
		},
	}
}
