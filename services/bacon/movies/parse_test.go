// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package movies

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/kbacon/services/bacon/graph"
)

func TestParseString(t *testing.T) {
	res := ParseString("Movie1/Alice/Bob\nMovie2/Bob/Carol")

	assert.Equal(t, graph.Adjacency{
		"Movie1": {"Alice", "Bob"},
		"Movie2": {"Bob", "Carol"},
		"Alice":  {"Movie1"},
		"Bob":    {"Movie1", "Movie2"},
		"Carol":  {"Movie2"},
	}, res.Adjacency)
	assert.Equal(t, []string{"Alice", "Bob", "Carol", "Movie1", "Movie2"}, res.Known)
	assert.Equal(t, 2, res.Lines)
	assert.Equal(t, 2, res.Movies)
}

func TestParseString_EdgeCases(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		adj    graph.Adjacency
		known  []string
		movies int
	}{
		{
			name:   "title only line registers nothing",
			input:  "Lonely\nM/A",
			adj:    graph.Adjacency{"M": {"A"}, "A": {"M"}},
			known:  []string{"A", "M"},
			movies: 1,
		},
		{
			name:   "empty lines ignored",
			input:  "\n\nM/A\n\n",
			adj:    graph.Adjacency{"M": {"A"}, "A": {"M"}},
			known:  []string{"A", "M"},
			movies: 1,
		},
		{
			name:   "windows line endings",
			input:  "M/A\r\nN/A\r\n",
			adj:    graph.Adjacency{"M": {"A"}, "N": {"A"}, "A": {"M", "N"}},
			known:  []string{"A", "M", "N"},
			movies: 2,
		},
		{
			name:   "duplicate actors kept",
			input:  "M/A/A",
			adj:    graph.Adjacency{"M": {"A", "A"}, "A": {"M", "M"}},
			known:  []string{"A", "M"},
			movies: 1,
		},
		{
			name:   "empty title",
			input:  "/A",
			adj:    graph.Adjacency{"": {"A"}, "A": {""}},
			known:  []string{"", "A"},
			movies: 1,
		},
		{
			name:   "self reference",
			input:  "X/X",
			adj:    graph.Adjacency{"X": {"X", "X"}},
			known:  []string{"X"},
			movies: 1,
		},
		{
			name:   "empty input",
			input:  "",
			adj:    graph.Adjacency{},
			known:  []string{},
			movies: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseString(tt.input)
			assert.Equal(t, tt.adj, res.Adjacency)
			assert.Equal(t, tt.known, res.Known)
			assert.Equal(t, tt.movies, res.Movies)
		})
	}
}

func TestParse_Latin1(t *testing.T) {
	raw := []byte("Am\xe9lie/Tautou, Audrey\n")

	res, err := ParseBytes(raw, DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, res.Adjacency, "Amélie")
	assert.Equal(t, []string{"Amélie"}, res.Adjacency["Tautou, Audrey"])
}

func TestParse_UTF8(t *testing.T) {
	res, err := ParseBytes([]byte("Amélie/Tautou, Audrey"), Options{Encoding: EncodingUTF8})
	require.NoError(t, err)
	assert.Contains(t, res.Adjacency, "Amélie")

	// The same UTF-8 bytes read as latin1 become two runes.
	res, err = ParseBytes([]byte("Amélie/Tautou, Audrey"), Options{Encoding: EncodingLatin1})
	require.NoError(t, err)
	assert.Contains(t, res.Adjacency, "AmÃ©lie")
}

func TestParse_Separator(t *testing.T) {
	res, err := Parse(strings.NewReader("M|A/B|C"), Options{Separator: "|"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A/B", "C"}, res.Adjacency["M"])
}

func TestParse_UnknownEncoding(t *testing.T) {
	_, err := Parse(strings.NewReader("M/A"), Options{Encoding: "ebcdic"})
	assert.ErrorIs(t, err, ErrUnknownEncoding)
}

func TestParse_ReadError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Parse(iotest.ErrReader(boom), Options{Encoding: EncodingUTF8})
	assert.ErrorIs(t, err, boom)
}

func TestParseEncoding(t *testing.T) {
	tests := map[string]Encoding{
		"":           EncodingLatin1,
		"latin1":     EncodingLatin1,
		"ISO-8859-1": EncodingLatin1,
		"utf8":       EncodingUTF8,
		" UTF-8 ":    EncodingUTF8,
	}
	for in, want := range tests {
		got, err := ParseEncoding(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseEncoding("cp1252")
	assert.ErrorIs(t, err, ErrUnknownEncoding)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.txt")
	require.NoError(t, os.WriteFile(path, []byte("M/A/B\n"), 0o600))

	res, err := ParseFile(path, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, res.Adjacency["M"])

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.txt"), DefaultOptions())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestKnownIDs(t *testing.T) {
	adj := graph.Adjacency{
		"A": {"B", "B"},
		"B": {"A", "A"},
		"C": {},
		"D": {"D"},
	}

	assert.Equal(t, []string{"A", "B", "D"}, KnownIDs(adj))
	assert.Empty(t, KnownIDs(graph.Adjacency{}))
}
