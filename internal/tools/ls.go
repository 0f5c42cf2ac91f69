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

// LsTool lists a directory recursively as a flat list plus an indented
// tree, with per-entry exclusion rules and a global entry cap.
type LsTool struct {
	workdir string
}

// NewLsTool creates a directory listing tool rooted at the process working
// directory.
func NewLsTool() *LsTool {
	return &LsTool{workdir: "."}
}

// commonIgnoredDirs are build/tooling directory names excluded from listings.
var commonIgnoredDirs = map[string]struct{}{
	"__pycache__":  {},
	"node_modules": {},
	"dist":         {},
	"build":        {},
	"target":       {},
	"vendor":       {},
	"bin":          {},
	"obj":          {},
	".git":         {},
	".idea":        {},
	".vscode":      {},
	".DS_Store":    {},
}

// ignoredExtensions are compiled-artifact suffixes excluded from listings.
var ignoredExtensions = []string{".pyc", ".pyo", ".pyd", ".so", ".dll", ".exe"}

// Execute lists the requested directory. Failures are rendered into the
// returned text; the error return is set alongside it for logging.
func (l *LsTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	start := time.Now()

	path := strings.TrimSpace(getStringArg(args, "path"))
	if path == "" {
		path = l.workdir
	}
	ignore := getStringSliceArg(args, "ignore")

	files, truncated, err := l.listDirectory(ctx, path, ignore)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		return fmt.Sprintf("Error: %v\n\nOperation failed after %dms", err, elapsed), err
	}

	output := renderListing(files, path)
	if truncated {
		limit := getLimits().MaxListEntries
		output = fmt.Sprintf(
			"There are more than %d entries in the directory. Use a more specific path or ignore patterns. The first %d files and directories are included below:\n\n%s",
			limit, limit, output)
	}

	governed := governOutput(output)
	if governed == "" {
		return fmt.Sprintf("Directory listing completed in %dms (no output)", elapsed), nil
	}
	return fmt.Sprintf("%s\n\nOperation completed in %dms", governed, elapsed), nil
}

func (l *LsTool) listDirectory(ctx context.Context, path string, ignore []string) ([]string, bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, false, fmt.Errorf("path '%s' does not exist", path)
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to stat path: %v", err)
	}
	if !info.IsDir() {
		return nil, false, fmt.Errorf("path '%s' is not a directory", path)
	}

	var files []string
	var truncated bool
	err = l.walk(ctx, path, ignore, &files, &truncated, getLimits().MaxListEntries)
	if err != nil {
		return nil, false, err
	}
	return files, truncated, nil
}

// walk enumerates entries in filesystem order, applying the exclusion
// predicate per entry. An excluded directory is not descended into. The
// walk halts once the global cap is reached.
func (l *LsTool) walk(ctx context.Context, dir string, ignore []string, files *[]string, truncated *bool, limit int) error {
	if err := ensureContext(ctx); err != nil {
		return err
	}
	if len(*files) >= limit {
		*truncated = true
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %v", err)
	}

	for _, entry := range entries {
		if len(*files) >= limit {
			*truncated = true
			break
		}

		name := entry.Name()
		if shouldSkipEntry(name, ignore) {
			continue
		}

		entryPath := filepath.Join(dir, name)
		if entry.IsDir() {
			*files = append(*files, entryPath+string(os.PathSeparator))
			if err := l.walk(ctx, entryPath, ignore, files, truncated, limit); err != nil {
				return err
			}
			continue
		}
		*files = append(*files, entryPath)
	}

	return nil
}

// shouldSkipEntry applies the fixed exclusion rules plus caller globs to a
// single entry name.
func shouldSkipEntry(name string, ignore []string) bool {
	if name != "." && strings.HasPrefix(name, ".") {
		return true
	}
	if _, ok := commonIgnoredDirs[name]; ok {
		return true
	}
	for _, ext := range ignoredExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	for _, pattern := range ignore {
		if matched, err := filepath.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}

// renderListing produces the flat path list followed by the indented tree
// reconstructed from shared path prefixes.
func renderListing(files []string, root string) string {
	var out strings.Builder
	for _, file := range files {
		out.WriteString(file)
		out.WriteString("\n")
	}

	out.WriteString("\nTree View:\n")
	out.WriteString(renderTree(buildFileTree(files, root), root))
	return out.String()
}

// treeNode is one entry of the hierarchical listing view.
type treeNode struct {
	name     string
	path     string
	kind     string // "file" or "directory"
	children []*treeNode
}

// buildFileTree reconstructs a tree from the flat discovered paths by
// grouping shared prefixes relative to the listed root. Directory paths
// carry a trailing separator in the flat form.
func buildFileTree(files []string, root string) []*treeNode {
	var rootNodes []*treeNode
	index := make(map[string]*treeNode)

	for _, file := range files {
		isDir := strings.HasSuffix(file, string(os.PathSeparator))
		trimmed := strings.TrimSuffix(file, string(os.PathSeparator))
		if !paths.HasPathPrefix(trimmed, root) {
			continue
		}
		rel, err := filepath.Rel(root, trimmed)
		if err != nil || rel == "." {
			continue
		}

		components := strings.Split(rel, string(os.PathSeparator))
		var parent *treeNode
		current := ""
		for i, component := range components {
			if current == "" {
				current = component
			} else {
				current = current + "/" + component
			}

			if node, ok := index[current]; ok {
				parent = node
				continue
			}

			kind := "directory"
			if i == len(components)-1 && !isDir {
				kind = "file"
			}
			node := &treeNode{name: component, path: current, kind: kind}
			index[current] = node

			if parent != nil {
				parent.children = append(parent.children, node)
			} else {
				rootNodes = append(rootNodes, node)
			}
			parent = node
		}
	}

	return rootNodes
}

func renderTree(nodes []*treeNode, root string) string {
	var out strings.Builder
	fmt.Fprintf(&out, "- %s/\n", strings.TrimSuffix(root, "/"))
	for _, node := range nodes {
		renderTreeNode(&out, node, 1)
	}
	return out.String()
}

func renderTreeNode(out *strings.Builder, node *treeNode, level int) {
	name := node.name
	if node.kind == "directory" {
		name += "/"
	}
	fmt.Fprintf(out, "%s- %s\n", strings.Repeat("  ", level), name)
	for _, child := range node.children {
		renderTreeNode(out, child, level+1)
	}
}
