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
	"regexp"
	"strings"
	"sync"
)

// OutputFilterConfig controls sanitization for tool outputs. Truncation
// bounds come from Limits.MaxOutputChars.
type OutputFilterConfig struct {
	StripANSI    bool
	StripControl bool
}

var (
	outputFiltersMu sync.RWMutex
	outputFilters   = DefaultOutputFilterConfig()
	ansiPattern     = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]|\x1b\][^\x1b]*(?:\x07|\x1b\\)`)
)

// DefaultOutputFilterConfig returns default output sanitization settings.
func DefaultOutputFilterConfig() OutputFilterConfig {
	return OutputFilterConfig{
		StripANSI:    true,
		StripControl: false,
	}
}

// ConfigureOutputFilters updates output sanitization settings.
func ConfigureOutputFilters(config OutputFilterConfig) {
	outputFiltersMu.Lock()
	defer outputFiltersMu.Unlock()
	outputFilters = config
}

func getOutputFilters() OutputFilterConfig {
	outputFiltersMu.RLock()
	defer outputFiltersMu.RUnlock()
	return outputFilters
}

// governOutput sanitizes and truncates tool output to the configured cap.
func governOutput(output string) string {
	config := getOutputFilters()
	governed := output
	if config.StripANSI {
		governed = ansiPattern.ReplaceAllString(governed, "")
	}
	if config.StripControl {
		governed = stripControlChars(governed)
	}
	return truncateMiddle(governed, getLimits().MaxOutputChars)
}

// truncateMiddle keeps the head and tail halves of oversized content and
// replaces the middle with a marker counting the elided newline-delimited
// lines. Content at or under max is returned unchanged.
func truncateMiddle(content string, max int) string {
	if max <= 0 || len(content) <= max {
		return content
	}

	half := max / 2
	start := content[:half]
	end := content[len(content)-half:]
	elided := strings.Count(content[half:len(content)-half], "\n")

	return fmt.Sprintf("%s\n\n... [%d lines truncated] ...\n\n%s", start, elided, end)
}

func stripControlChars(input string) string {
	var builder strings.Builder
	builder.Grow(len(input))
	for _, r := range input {
		if r == '\n' || r == '\r' || r == '\t' {
			builder.WriteRune(r)
			continue
		}
		if r < 0x20 || r == 0x7f {
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}
