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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gofer/internal/paths"
)

// FindFileTool searches for a file by exact name under a search root with
// bounded depth and returns the governed content of the first match.
type FindFileTool struct{}

// NewFindFileTool creates a recursive file finder.
func NewFindFileTool() *FindFileTool {
	return &FindFileTool{}
}

// Execute runs the search. Failures are rendered into the returned text;
// the error return is set alongside it for logging.
func (f *FindFileTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	start := time.Now()

	output, err := f.findAndRead(ctx, args)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		return fmt.Sprintf("Error: %v\n\nOperation failed after %dms", err, elapsed), err
	}
	return fmt.Sprintf("%s\n\nOperation completed in %dms", output, elapsed), nil
}

func (f *FindFileTool) findAndRead(ctx context.Context, args map[string]interface{}) (string, error) {
	filename := strings.TrimSpace(getStringArg(args, "filename"))
	if filename == "" {
		return "", fmt.Errorf("'filename' is required. Example: { filename: 'main.go' }")
	}
	includeHidden := getBoolArg(args, "include_hidden_dirs")

	root, err := f.searchRoot(getStringArg(args, "search_path"))
	if err != nil {
		return "", err
	}

	match, err := f.findFile(ctx, filename, root, includeHidden, 0)
	if err != nil {
		return "", err
	}
	if match == "" {
		return "", fmt.Errorf("file '%s' not found in search path: %s", filename, root)
	}

	content, err := os.ReadFile(match)
	if err != nil {
		return "", fmt.Errorf("error reading file '%s': %v", match, err)
	}
	return governOutput(string(content)), nil
}

func (f *FindFileTool) searchRoot(searchPath string) (string, error) {
	searchPath = strings.TrimSpace(searchPath)
	if searchPath == "" {
		root, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to determine working directory: %v", err)
		}
		return root, nil
	}
	return paths.ResolveFromWorkdir(searchPath)
}

// findFile is a depth-first search for an exact filename match. Hidden
// directories are skipped unless requested; the match check itself does not
// care whether the file is hidden. First match wins.
func (f *FindFileTool) findFile(ctx context.Context, filename, dir string, includeHidden bool, depth int) (string, error) {
	if depth > getLimits().MaxSearchDepth {
		return "", nil
	}
	if err := ensureContext(ctx); err != nil {
		return "", err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		// Unreadable directories are skipped, not fatal.
		return "", nil
	}

	for _, entry := range entries {
		name := entry.Name()
		entryPath := filepath.Join(dir, name)

		if entry.IsDir() {
			if !includeHidden && strings.HasPrefix(name, ".") {
				continue
			}
			match, err := f.findFile(ctx, filename, entryPath, includeHidden, depth+1)
			if err != nil {
				return "", err
			}
			if match != "" {
				return match, nil
			}
			continue
		}

		if name == filename && entry.Type().IsRegular() {
			return entryPath, nil
		}
	}

	return "", nil
}
