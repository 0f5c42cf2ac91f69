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

// Package systemprompt ships the agent's system prompt as embedded text
// files, so the prompt can be tuned without touching Go code. Files are
// concatenated in lexical order.
package systemprompt

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.txt
var promptFiles embed.FS

// Load concatenates all embedded prompt files in lexical order.
func Load() (string, error) {
	entries, err := fs.ReadDir(promptFiles, ".")
	if err != nil {
		return "", fmt.Errorf("failed to read embedded system prompt files: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		names = append(names, entry.Name())
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no system prompt files found in embedded set")
	}
	sort.Strings(names)

	var sections []string
	for _, name := range names {
		data, err := promptFiles.ReadFile(name)
		if err != nil {
			return "", fmt.Errorf("failed to read system prompt file %q: %w", name, err)
		}
		sections = append(sections, strings.TrimRight(string(data), "\n"))
	}

	return strings.Join(sections, "\n\n") + "\n", nil
}
