// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package movies parses movie/actor edge lists into an adjacency mapping.
//
// Each line of the input is one movie:
//
//	Title/Actor One/Actor Two/.../Actor N
//
// The title is linked to every actor on the line in both directions. There is
// no escaping, so a "/" inside a name cannot be represented. Lines are not
// validated: empty titles, duplicate actors and self references are kept as
// they are.
package movies

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/AleutianAI/kbacon/services/bacon/graph"
)

// Encoding selects how input bytes are decoded.
type Encoding string

const (
	// EncodingLatin1 maps every byte to the rune of the same value, so any
	// byte sequence decodes. This is the encoding historical movie lists use.
	EncodingLatin1 Encoding = "latin1"

	// EncodingUTF8 passes bytes through unchanged.
	EncodingUTF8 Encoding = "utf8"
)

// DefaultSeparator splits the fields of a line.
const DefaultSeparator = "/"

// ErrUnknownEncoding is returned for an Encoding other than latin1 or utf8.
var ErrUnknownEncoding = errors.New("unknown encoding")

// Options configures parsing.
type Options struct {
	// Encoding of the input. Default: latin1.
	Encoding Encoding

	// Separator between title and actors. Default: "/".
	Separator string
}

// DefaultOptions returns latin1 decoding with "/" separators.
func DefaultOptions() Options {
	return Options{
		Encoding:  EncodingLatin1,
		Separator: DefaultSeparator,
	}
}

// Result is the output of a parse.
type Result struct {
	// Adjacency maps every title that has at least one actor, and every
	// actor, to its ordered neighbors.
	Adjacency graph.Adjacency

	// Known lists, sorted and without duplicates, every ID that appears as
	// a neighbor of some key. Titles without actors are not included.
	Known []string

	// Lines is the number of lines read, including empty ones.
	Lines int

	// Movies is the number of lines that linked at least one actor.
	Movies int
}

// ParseEncoding converts a config string to an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return EncodingLatin1, nil
	case "utf8", "utf-8":
		return EncodingUTF8, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEncoding, s)
	}
}

// Parse reads an edge list from r.
//
// Description:
//
//	Decodes r with the configured encoding, splits it on "\n" (dropping a
//	trailing "\r" per line) and builds the adjacency mapping: for each
//	actor on a line, the actor is appended to the title's list and the
//	title to the actor's list.
//
// Inputs:
//
//	r - Source of the edge list.
//	opts - Decoding options. Zero values fall back to DefaultOptions.
//
// Outputs:
//
//	*Result - The parsed mapping and bookkeeping.
//	error - Non-nil if reading fails or the encoding is unknown.
func Parse(r io.Reader, opts Options) (*Result, error) {
	if opts.Encoding == "" {
		opts.Encoding = EncodingLatin1
	}
	if opts.Separator == "" {
		opts.Separator = DefaultSeparator
	}

	var src io.Reader
	switch opts.Encoding {
	case EncodingLatin1:
		src = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	case EncodingUTF8:
		src = r
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, opts.Encoding)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read edge list: %w", err)
	}

	return build(string(data), opts.Separator), nil
}

// ParseString parses already-decoded text with the default separator.
func ParseString(text string) *Result {
	return build(text, DefaultSeparator)
}

// ParseBytes parses raw bytes with the given options.
func ParseBytes(data []byte, opts Options) (*Result, error) {
	return Parse(bytes.NewReader(data), opts)
}

// ParseFile opens path and parses it.
func ParseFile(path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open movie file: %w", err)
	}
	defer f.Close()

	res, err := Parse(f, opts)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return res, nil
}

func build(text, sep string) *Result {
	adj := make(graph.Adjacency)
	res := &Result{Adjacency: adj}

	for _, line := range strings.Split(text, "\n") {
		res.Lines++
		line = strings.TrimSuffix(line, "\r")

		fields := strings.Split(line, sep)
		title, actors := fields[0], fields[1:]
		if len(actors) > 0 {
			res.Movies++
		}
		for _, actor := range actors {
			adj.AddEdge(title, actor)
		}
	}

	res.Known = KnownIDs(adj)
	return res
}

// KnownIDs returns every ID that appears in some neighbor list of adj,
// sorted and unique. Keys with an empty neighbor list that nothing points
// at are left out.
func KnownIDs(adj graph.Adjacency) []string {
	seen := make(map[string]struct{})
	for _, neighbors := range adj {
		for _, n := range neighbors {
			seen[n] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
