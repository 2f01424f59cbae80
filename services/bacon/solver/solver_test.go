// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package solver

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/kbacon/services/bacon/graph"
	"github.com/AleutianAI/kbacon/services/bacon/movies"
)

const (
	bacon   = "Bacon, Kevin"
	singer  = "Singer, Lori"
	lithgow = "Lithgow, John"
	myers   = "Myers, Mike"
	murphy  = "Murphy, Eddie"
	hurley  = "Hurley, Elizabeth"
	carl    = "Castaway, Carl"
)

const fixture = "Footloose/Bacon, Kevin/Singer, Lori/Lithgow, John\n" +
	"Shrek/Lithgow, John/Myers, Mike/Murphy, Eddie\n" +
	"Austin Powers/Myers, Mike/Hurley, Elizabeth\n" +
	"Lonely\n" +
	"Island Film/Castaway, Carl\n"

func newFixture(t *testing.T, mutate ...func(*Config)) *Solver {
	t.Helper()
	cfg := DefaultConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	s, err := NewFromText(fixture, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewFromText_BasicExample(t *testing.T) {
	s, err := NewFromText("Movie1/Alice/Bob\nMovie2/Bob/Carol", DefaultConfig())
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	assert.True(t, s.Graph().HasNode("Alice"))
	assert.True(t, s.Graph().HasNode("Carol"))

	path, err := s.PathTo(ctx, "Alice", "Carol")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Movie1", "Bob", "Movie2", "Carol"}, path)

	d, err := s.Distance(ctx, "Alice", "Carol")
	require.NoError(t, err)
	assert.Equal(t, 2, d)
}

func TestNew_KnownExcludesTitleOnlyLines(t *testing.T) {
	s := newFixture(t)

	assert.Equal(t, []string{
		"Austin Powers", bacon, carl, "Footloose", hurley, "Island Film",
		lithgow, murphy, myers, "Shrek", singer,
	}, s.Known())
	assert.False(t, s.Graph().HasNode("Lonely"))
	assert.NotContains(t, s.Known(), "Lonely")
}

func TestNew_KnownIncludesNeighborsWithoutKeys(t *testing.T) {
	s, err := New(graph.Adjacency{"A": {"B"}, "C": {}}, DefaultConfig())
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, []string{"B"}, s.Known())
}

func TestNew_WithKnown(t *testing.T) {
	known := []string{"Bob", "Movie1"}
	s, err := New(graph.Adjacency{
		"Movie1": {"Alice", "Bob"},
		"Alice":  {"Movie1"},
		"Bob":    {"Movie1"},
	}, DefaultConfig(), WithKnown(known))
	require.NoError(t, err)
	defer s.Close()

	known[0] = "changed"
	assert.Equal(t, []string{"Bob", "Movie1"}, s.Known())
	assert.Equal(t, []string{"Bob"}, s.Search("b"))
}

func TestNewFromText_KnownMatchesParser(t *testing.T) {
	text := "Movie1/Alice/Bob\nLonely\nMovie2/Bob/Carol"
	s, err := NewFromText(text, DefaultConfig())
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, movies.ParseString(text).Known, s.Known())
}

func TestNew_ConfigDefaults(t *testing.T) {
	s, err := New(graph.Adjacency{}, Config{})
	require.NoError(t, err)
	defer s.Close()

	cfg := s.Config()
	assert.Equal(t, DefaultReference, cfg.Reference)
	assert.Equal(t, DefaultSearchLimit, cfg.SearchLimit)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, BackendBFS, cfg.Backend)
	assert.Zero(t, cfg.PathCacheSize)
	assert.Equal(t, DefaultReference, s.Reference())
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"negative search limit", func(c *Config) { c.SearchLimit = -5 }},
		{"negative cache size", func(c *Config) { c.PathCacheSize = -1 }},
		{"unknown backend", func(c *Config) { c.Backend = "networkx" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := NewFromText(fixture, cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestPathTo_DefaultsToReference(t *testing.T) {
	s := newFixture(t)

	path, err := s.PathTo(context.Background(), hurley)
	require.NoError(t, err)
	assert.Equal(t, []string{hurley, "Austin Powers", myers, "Shrek", lithgow, "Footloose", bacon}, path)

	path, err = s.PathTo(context.Background(), hurley, "")
	require.NoError(t, err)
	assert.Equal(t, bacon, path[len(path)-1])
}

func TestPathTo_UnknownNode(t *testing.T) {
	s := newFixture(t)
	ctx := context.Background()

	_, err := s.PathTo(ctx, "Nobody")
	require.ErrorIs(t, err, ErrUnknownNode)
	var unk *UnknownNodeError
	require.True(t, errors.As(err, &unk))
	assert.Equal(t, "Nobody", unk.ID)

	_, err = s.PathTo(ctx, singer, "Nobody")
	require.ErrorIs(t, err, ErrUnknownNode)
	require.True(t, errors.As(err, &unk))
	assert.Equal(t, "Nobody", unk.ID)

	// Title-only lines never become nodes.
	_, err = s.Distance(ctx, "Lonely")
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestPathTo_NoPath(t *testing.T) {
	s := newFixture(t)

	_, err := s.PathTo(context.Background(), carl)
	require.ErrorIs(t, err, ErrNoPath)
	var np *graph.NoPathError
	require.True(t, errors.As(err, &np))
	assert.Equal(t, carl, np.From)
	assert.Equal(t, bacon, np.To)
}

func TestNumberFromPath(t *testing.T) {
	tests := []struct {
		path []string
		want int
	}{
		{[]string{"A"}, 0},
		{[]string{"A", "M"}, 0},
		{[]string{"A", "M", "B"}, 1},
		{[]string{"M", "A", "N", "B"}, 1},
		{[]string{"A", "M", "B", "N", "C"}, 2},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.path), func(t *testing.T) {
			assert.Equal(t, tt.want, NumberFromPath(tt.path))
		})
	}
}

func TestDistance(t *testing.T) {
	s := newFixture(t)

	tests := map[string]int{
		bacon:           0,
		"Footloose":     0,
		singer:          1,
		lithgow:         1,
		"Shrek":         1,
		myers:           2,
		murphy:          2,
		"Austin Powers": 2,
		hurley:          3,
	}
	for node, want := range tests {
		t.Run(node, func(t *testing.T) {
			got, err := s.Distance(context.Background(), node)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestDistance_ExplicitTarget(t *testing.T) {
	s := newFixture(t)

	d, err := s.Distance(context.Background(), singer, hurley)
	require.NoError(t, err)
	assert.Equal(t, 3, d)
}

func TestSearch(t *testing.T) {
	s := newFixture(t)

	assert.Equal(t, []string{hurley, lithgow}, s.Search("LI"))
	assert.Equal(t, []string{bacon}, s.Search("kevin"))
	assert.Empty(t, s.Search("zzz"))
	assert.NotNil(t, s.Search("zzz"))
	assert.Len(t, s.Search(""), len(s.Known()))
}

func TestSearch_Limit(t *testing.T) {
	s := newFixture(t, func(c *Config) { c.SearchLimit = 3 })

	assert.Equal(t, []string{"Austin Powers", bacon, "Footloose"}, s.Search("o"))
}

func TestSearch_DefaultLimit(t *testing.T) {
	var text string
	for i := range 30 {
		text += fmt.Sprintf("Movie %02d/Actor %02d\n", i, i)
	}
	s, err := NewFromText(text, DefaultConfig())
	require.NoError(t, err)
	defer s.Close()

	got := s.Search("actor")
	require.Len(t, got, DefaultSearchLimit)
	assert.Equal(t, "Actor 00", got[0])
	assert.Equal(t, "Actor 19", got[19])
}

func TestReport(t *testing.T) {
	s := newFixture(t)

	r, err := s.Report(context.Background())
	require.NoError(t, err)

	assert.Equal(t, bacon, r.Target)
	assert.Equal(t, 9, r.Connected)
	assert.Equal(t, 2, r.Unconnected)
	assert.InDelta(t, 12.0/9.0, r.Average, 1e-9)
	assert.Equal(t, 3, r.Max)
	assert.Equal(t, []string{hurley}, r.Farthest)
	assert.Equal(t, map[int]int{0: 2, 1: 3, 2: 3, 3: 1}, r.Histogram)

	avg, err := s.AverageDistance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, r.Average, avg)
}

func TestReport_FarthestTies(t *testing.T) {
	s := newFixture(t)

	r, err := s.Report(context.Background(), lithgow)
	require.NoError(t, err)
	// Bacon and Singer are one movie from Lithgow through Footloose, as are
	// Myers and Murphy through Shrek; Hurley is two away.
	assert.Equal(t, 2, r.Max)
	assert.Equal(t, []string{hurley}, r.Farthest)

	r, err = s.Report(context.Background(), singer)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Max)
	assert.Equal(t, []string{hurley}, r.Farthest)
}

func TestReport_IsolatedNodeExcluded(t *testing.T) {
	adj := graph.Adjacency{
		"Movie": {"A", "B"},
		"A":     {"Movie"},
		"B":     {"Movie"},
		"Solo":  {},
	}
	s, err := New(adj, Config{Reference: "A"})
	require.NoError(t, err)
	defer s.Close()

	avg, err := s.AverageDistance(context.Background())
	require.NoError(t, err)
	// Movie: 0, A: 0, B: 1.
	assert.InDelta(t, 1.0/3.0, avg, 1e-9)
}

func TestReport_NoConnectedNodes(t *testing.T) {
	tests := []struct {
		name string
		adj  graph.Adjacency
	}{
		{"all isolated", graph.Adjacency{"A": {}, "B": {}}},
		{"target isolated", graph.Adjacency{"A": {}, "C": {"D"}, "D": {"C"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.adj, Config{Reference: "A"})
			require.NoError(t, err)
			defer s.Close()

			_, err = s.AverageDistance(context.Background())
			assert.ErrorIs(t, err, ErrNoConnectedNodes)
		})
	}
}

func TestReport_UnknownTarget(t *testing.T) {
	s := newFixture(t)

	_, err := s.Report(context.Background(), "Nobody")
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestReport_Cancelled(t *testing.T) {
	s := newFixture(t, func(c *Config) { c.Workers = 1 })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Report(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPathCache(t *testing.T) {
	s := newFixture(t)
	ctx := context.Background()

	first, err := s.PathTo(ctx, hurley)
	require.NoError(t, err)
	first[0] = "mutated"

	second, err := s.PathTo(ctx, hurley)
	require.NoError(t, err)
	assert.Equal(t, hurley, second[0])

	_, err = s.PathTo(ctx, carl)
	require.ErrorIs(t, err, ErrNoPath)
	_, err = s.PathTo(ctx, carl)
	require.ErrorIs(t, err, ErrNoPath)

	st := s.Stats()
	assert.Equal(t, 2, st.PathCacheEntries)
	assert.Equal(t, int64(2), st.PathCacheHits)
	assert.Equal(t, int64(2), st.PathCacheMisses)
}

func TestPathCache_Disabled(t *testing.T) {
	s := newFixture(t, func(c *Config) { c.PathCacheSize = 0 })

	d, err := s.Distance(context.Background(), hurley)
	require.NoError(t, err)
	assert.Equal(t, 3, d)
	assert.Zero(t, s.Stats().PathCacheEntries)
}

func TestDistanceMemo(t *testing.T) {
	s := newFixture(t, func(c *Config) { c.MemoDistances = true })
	ctx := context.Background()

	for range 2 {
		d, err := s.Distance(ctx, hurley)
		require.NoError(t, err)
		assert.Equal(t, 3, d)

		_, err = s.Distance(ctx, carl)
		assert.ErrorIs(t, err, ErrNoPath)
	}
	assert.Equal(t, 2, s.Stats().MemoEntries)

	r, err := s.Report(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, r.Connected)
	assert.Equal(t, len(s.Known()), s.Stats().MemoEntries)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	d, err := s.Distance(ctx, hurley)
	require.NoError(t, err)
	assert.Equal(t, 3, d)
	assert.Zero(t, s.Stats().MemoEntries)
}

func TestStats(t *testing.T) {
	s := newFixture(t)

	st := s.Stats()
	assert.Equal(t, bacon, st.Reference)
	assert.Equal(t, BackendBFS, st.Backend)
	assert.Equal(t, 11, st.KnownNodes)
	assert.Equal(t, 11, st.Graph.NodeCount)
	assert.Equal(t, 9, st.Graph.EdgeCount)
}

// randomMovies builds a bipartite movie/actor edge list.
func randomMovies(seed uint64, movies, actors, cast int) string {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	var text string
	for m := range movies {
		text += fmt.Sprintf("M%03d", m)
		for range cast {
			text += fmt.Sprintf("/A%03d", r.IntN(actors))
		}
		text += "\n"
	}
	return text
}

func TestGraphLibBackend_MatchesBFS(t *testing.T) {
	text := randomMovies(7, 40, 60, 3)
	ctx := context.Background()

	bfs, err := NewFromText(text, Config{Reference: "M000", PathCacheSize: 128})
	require.NoError(t, err)
	defer bfs.Close()
	lib, err := NewFromText(text, Config{Reference: "M000", Backend: BackendGraphLib})
	require.NoError(t, err)
	defer lib.Close()

	require.True(t, bfs.Graph().HasNode("M000"))

	for _, node := range bfs.Known() {
		want, wantErr := bfs.Distance(ctx, node)
		got, gotErr := lib.Distance(ctx, node)
		if wantErr != nil {
			assert.ErrorIs(t, gotErr, ErrNoPath, node)
			continue
		}
		require.NoError(t, gotErr, node)
		assert.Equal(t, want, got, node)

		path, err := lib.PathTo(ctx, node)
		require.NoError(t, err)
		assert.Equal(t, node, path[0])
		assert.Equal(t, "M000", path[len(path)-1])
	}

	want, wantErr := bfs.Report(ctx)
	got, gotErr := lib.Report(ctx)
	if wantErr != nil {
		assert.ErrorIs(t, gotErr, ErrNoConnectedNodes)
		return
	}
	require.NoError(t, gotErr)
	assert.Equal(t, want, got)
}

func TestSolver_ConcurrentQueries(t *testing.T) {
	s := newFixture(t, func(c *Config) {
		c.MemoDistances = true
		c.PathCacheSize = 4
	})
	ctx := context.Background()

	want, err := s.Report(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := s.Report(ctx)
			if err != nil {
				errs <- err
				return
			}
			if r.Average != want.Average {
				errs <- fmt.Errorf("average %v, want %v", r.Average, want.Average)
			}
			if _, err := s.PathTo(ctx, myers, hurley); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
