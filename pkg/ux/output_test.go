// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"bytes"
	"testing"
)

func TestPrinter_PlainHasNoEscapes(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, true)

	p.Title("ignored")
	p.Success("done")
	p.Warning("careful")
	p.Error("broken")
	p.Line("%s %s", p.Highlight("a"), p.Muted("b"))

	want := "OK: done\nWARN: careful\nERROR: broken\na b\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
	if bytes.Contains(buf.Bytes(), []byte("\x1b[")) {
		t.Error("plain output contains ANSI escapes")
	}
}

func TestPrinter_KeyValueAligns(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, true).KeyValue([][2]string{{"nodes", "8"}, {"reference", "Bacon, Kevin"}})

	want := "nodes:     8\nreference: Bacon, Kevin\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestPrinter_Bar(t *testing.T) {
	p := NewPrinter(&bytes.Buffer{}, true)

	tests := []struct {
		value, max, width int
		want              string
	}{
		{10, 10, 4, "████"},
		{5, 10, 4, "██"},
		{1, 100, 4, "█"},
		{0, 10, 4, ""},
		{3, 0, 4, ""},
	}
	for _, tt := range tests {
		if got := p.Bar(tt.value, tt.max, tt.width); got != tt.want {
			t.Errorf("Bar(%d, %d, %d) = %q, want %q", tt.value, tt.max, tt.width, got, tt.want)
		}
	}
}

func TestPrinter_BoxPlain(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, true).Box("Bacon number", "2")

	if buf.String() != "Bacon number: 2\n" {
		t.Errorf("output = %q", buf.String())
	}
}
