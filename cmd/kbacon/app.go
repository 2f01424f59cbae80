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
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/kbacon/cmd/kbacon/config"
	"github.com/AleutianAI/kbacon/pkg/logging"
	"github.com/AleutianAI/kbacon/pkg/ux"
	"github.com/AleutianAI/kbacon/services/bacon/movies"
	"github.com/AleutianAI/kbacon/services/bacon/solver"
)

// app holds the state shared by all subcommands of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string

	// Persistent flags
	configPath string
	data       string
	reference  string
	encoding   string
	logLevel   string
	logJSON    bool
	jsonOut    bool

	// ran is set once argument validation passed and a command started.
	ran bool

	cfg    *config.Config
	logger *logging.Logger
	out    *ux.Printer
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr, getenv: os.Getenv}
	return a.execute(context.Background(), args)
}

func (a *app) execute(ctx context.Context, args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	if err != nil && !a.ran {
		err = badArgs(err)
	}
	if err != nil {
		a.printError(err)
	}
	if a.logger != nil {
		_ = a.logger.Close()
	}
	return exitCode(err)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kbacon",
		Short: "Six degrees of Kevin Bacon over a movie/actor list",
		Long: `kbacon links every movie to its cast and answers shortest-path
queries between any two actors or movies.

The data file has one movie per line:

  Title/Actor One/Actor Two/...

Configuration is read from kbacon.yaml (or --config), then the
KBACON_DATA and KBACON_REFERENCE environment variables, then flags.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return badArgs(err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (default ./kbacon.yaml if present)")
	pf.StringVar(&a.data, "data", "", "Movie list file (default "+config.DefaultDataFile+")")
	pf.StringVar(&a.reference, "reference", "", "Reference node (default \""+solver.DefaultReference+"\")")
	pf.StringVar(&a.encoding, "encoding", "", "Data file encoding: latin1 or utf8")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.BoolVar(&a.logJSON, "log-json", false, "Write logs as JSON")
	pf.BoolVar(&a.jsonOut, "json", false, "Output as JSON for scripting")

	root.AddCommand(
		a.pathCmd(),
		a.numberCmd(),
		a.searchCmd(),
		a.averageCmd(),
		a.traverseCmd(),
		a.statsCmd(),
		a.serveCmd(),
	)
	return root
}

// setup loads configuration, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.ran = true

	cfg, err := config.Load(a.configPath, a.getenv)
	if err != nil {
		return badArgs(err)
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.Data = a.data
	}
	if flags.Changed("reference") {
		cfg.Solver.Reference = a.reference
	}
	if flags.Changed("encoding") {
		cfg.Encoding = a.encoding
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	if a.logJSON {
		cfg.Logging.Format = string(logging.FormatJSON)
	}
	if err := cfg.Validate(); err != nil {
		return badArgs(err)
	}

	level, err := cfg.LoggingLevel()
	if err != nil {
		return badArgs(err)
	}
	a.cfg = cfg
	a.logger = logging.New(logging.Config{
		Level:   level,
		Format:  logging.Format(cfg.Logging.Format),
		Service: "kbacon",
		Writer:  a.stderr,
		LogDir:  cfg.Logging.Dir,
	})
	a.out = ux.NewPrinter(a.stdout, !isTerminal(a.stdout))
	return nil
}

// loadSolver parses the data file and builds a solver.
func (a *app) loadSolver() (*solver.Solver, error) {
	logger := a.logger.Slog()
	began := time.Now()

	opts, err := a.cfg.MovieOptions()
	if err != nil {
		return nil, badArgs(err)
	}
	res, err := movies.ParseFile(a.cfg.Data, opts)
	if err != nil {
		return nil, err
	}

	s, err := solver.New(res.Adjacency, a.cfg.ToSolver(),
		solver.WithLogger(logger), solver.WithKnown(res.Known))
	if err != nil {
		if errors.Is(err, solver.ErrInvalidConfig) {
			return nil, badArgs(err)
		}
		return nil, err
	}

	logger.Info("data loaded",
		slog.String("file", a.cfg.Data),
		slog.Int("lines", res.Lines),
		slog.Int("movies", res.Movies),
		slog.Duration("elapsed", time.Since(began)),
	)
	return s, nil
}

// printError reports err as JSON on stdout with --json, else on stderr.
func (a *app) printError(err error) {
	if a.jsonOut {
		writeJSON(a.stdout, errorOutput{
			APIVersion: APIVersion,
			Success:    false,
			Error:      err.Error(),
			ExitCode:   exitCode(err),
		})
		return
	}
	fmt.Fprintf(a.stderr, "Error: %v\n", err)
	if exitCode(err) == ExitBadArgs {
		fmt.Fprintln(a.stderr, "Run 'kbacon --help' for usage.")
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
