// Copyright (C) 2025 the gofer authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package tools

import (
	"fmt"
	"strings"
	"testing"
)

func TestTruncateMiddleShortContent(t *testing.T) {
	content := "short output"
	if got := truncateMiddle(content, 100); got != content {
		t.Fatalf("expected content under the cap to pass through, got %q", got)
	}
	if got := truncateMiddle(content, len(content)); got != content {
		t.Fatalf("expected content exactly at the cap to pass through, got %q", got)
	}
	if got := truncateMiddle("", 10); got != "" {
		t.Fatalf("expected empty content to pass through, got %q", got)
	}
}

func TestTruncateMiddleOversized(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&sb, "line-%03d\n", i)
	}
	content := sb.String()

	got := truncateMiddle(content, 100)
	if !strings.Contains(got, "lines truncated] ...") {
		t.Fatalf("expected truncation marker, got %q", got)
	}
	if !strings.HasPrefix(got, content[:50]) {
		t.Fatalf("expected head half to be preserved, got %q", got)
	}
	if !strings.HasSuffix(got, content[len(content)-50:]) {
		t.Fatalf("expected tail half to be preserved, got %q", got)
	}

	elided := strings.Count(content[50:len(content)-50], "\n")
	marker := fmt.Sprintf("... [%d lines truncated] ...", elided)
	if !strings.Contains(got, marker) {
		t.Fatalf("expected marker %q in %q", marker, got)
	}
}

func TestGovernOutputStripsANSI(t *testing.T) {
	ConfigureOutputFilters(DefaultOutputFilterConfig())
	t.Cleanup(func() {
		ConfigureOutputFilters(DefaultOutputFilterConfig())
	})

	input := "\x1b[31mred\x1b[0m plain"
	if got := governOutput(input); got != "red plain" {
		t.Fatalf("expected ANSI sequences stripped, got %q", got)
	}
}

func TestGovernOutputStripControl(t *testing.T) {
	ConfigureOutputFilters(OutputFilterConfig{StripANSI: true, StripControl: true})
	t.Cleanup(func() {
		ConfigureOutputFilters(DefaultOutputFilterConfig())
	})

	input := "a\x00b\x07c\nd\te"
	if got := governOutput(input); got != "abc\nd\te" {
		t.Fatalf("expected control chars stripped but whitespace kept, got %q", got)
	}
}

func TestGovernOutputAppliesConfiguredCap(t *testing.T) {
	ConfigureLimits(Limits{MaxOutputChars: 40})
	t.Cleanup(func() {
		ConfigureLimits(DefaultLimits())
	})

	content := strings.Repeat("abcdefghi\n", 20)
	got := governOutput(content)
	if !strings.Contains(got, "lines truncated] ...") {
		t.Fatalf("expected output over the configured cap to be truncated, got %q", got)
	}
}
