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
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gofer/internal/paths"

	"github.com/u-root/u-root/pkg/core"
	corecp "github.com/u-root/u-root/pkg/core/cp"
	coremv "github.com/u-root/u-root/pkg/core/mv"
	corerm "github.com/u-root/u-root/pkg/core/rm"
)

// FileTool performs read/write/exists/delete/move/copy against resolved
// absolute paths. Relative inputs are resolved once against the process
// working directory, independent of the shell tool's tracked directory.
type FileTool struct{}

// NewFileTool creates a file operations tool.
func NewFileTool() *FileTool {
	return &FileTool{}
}

const fileOperationsList = "'read', 'write', 'exists', 'delete', 'move', 'copy'"

// Execute dispatches one file operation. Failures are rendered into the
// returned text; the error return is set alongside it for logging.
func (f *FileTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	start := time.Now()
	operation := strings.ToLower(strings.TrimSpace(getStringArg(args, "operation")))

	output, err := f.dispatch(ctx, operation, args)
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		return fmt.Sprintf("Error: %v\n\nOperation failed after %dms", err, elapsed), err
	}
	if output == "" {
		return fmt.Sprintf("File operation completed in %dms (no output)", elapsed), nil
	}
	return fmt.Sprintf("%s\n\nOperation completed in %dms", governOutput(output), elapsed), nil
}

func (f *FileTool) dispatch(ctx context.Context, operation string, args map[string]interface{}) (string, error) {
	switch operation {
	case "read":
		path, err := requireFileField(args, "path", "read", "path: '/full/path/to/file.txt'")
		if err != nil {
			return "", err
		}
		return f.read(path)
	case "write":
		path, err := requireFileField(args, "path", "write", "path: '/full/path/to/file.txt', content: 'file content'")
		if err != nil {
			return "", err
		}
		if _, ok := args["content"]; !ok {
			return "", fmt.Errorf("missing 'content' parameter. Example: { operation: 'write', path: '/full/path/to/file.txt', content: 'file content' }")
		}
		return f.write(path, getStringArg(args, "content"), getBoolArg(args, "append"))
	case "exists":
		path, err := requireFileField(args, "path", "exists", "path: '/full/path/to/file.txt'")
		if err != nil {
			return "", err
		}
		return f.exists(path)
	case "delete":
		path, err := requireFileField(args, "path", "delete", "path: '/full/path/to/file.txt'")
		if err != nil {
			return "", err
		}
		return f.delete(ctx, path)
	case "move":
		source, destination, err := requireSourceDestination(args, "move")
		if err != nil {
			return "", err
		}
		return f.move(ctx, source, destination)
	case "copy":
		source, destination, err := requireSourceDestination(args, "copy")
		if err != nil {
			return "", err
		}
		return f.copy(ctx, source, destination)
	case "":
		return "", fmt.Errorf("'operation' parameter is required. Valid operations are: %s", fileOperationsList)
	default:
		return "", fmt.Errorf("unknown operation: '%s'. Valid operations are: %s", operation, fileOperationsList)
	}
}

func requireFileField(args map[string]interface{}, field, operation, example string) (string, error) {
	value := strings.TrimSpace(getStringArg(args, field))
	if value == "" {
		return "", fmt.Errorf("'%s' is required for '%s' operation. Example: { operation: '%s', %s }",
			field, operation, operation, example)
	}
	return value, nil
}

func requireSourceDestination(args map[string]interface{}, operation string) (string, string, error) {
	example := fmt.Sprintf("{ operation: '%s', source: '/path/to/source.txt', destination: '/path/to/dest.txt' }", operation)
	source := strings.TrimSpace(getStringArg(args, "source"))
	destination := strings.TrimSpace(getStringArg(args, "destination"))
	switch {
	case source == "" && destination == "":
		return "", "", fmt.Errorf("both 'source' and 'destination' are required for '%s' operation. Example: %s", operation, example)
	case source == "":
		return "", "", fmt.Errorf("missing 'source' parameter. Example: %s", example)
	case destination == "":
		return "", "", fmt.Errorf("missing 'destination' parameter. Example: %s", example)
	}
	return source, destination, nil
}

func (f *FileTool) read(path string) (string, error) {
	resolved, err := paths.ResolveFromWorkdir(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(resolved)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("file '%s' does not exist", resolved)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read file: %v", err)
	}
	if info.IsDir() || !info.Mode().IsRegular() {
		return "", fmt.Errorf("path '%s' is not a file", resolved)
	}
	if info.Size() > getLimits().MaxFileSizeBytes {
		return "", fmt.Errorf("file exceeds maximum size of %d bytes", getLimits().MaxFileSizeBytes)
	}

	content, err := os.ReadFile(resolved)
	if err != nil {
		return "", fmt.Errorf("error reading file: %v", err)
	}
	return string(content), nil
}

func (f *FileTool) write(path, content string, appendMode bool) (string, error) {
	resolved, err := paths.ResolveFromWorkdir(path)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return "", fmt.Errorf("failed to create parent directory: %v", err)
	}

	flags := os.O_WRONLY | os.O_CREATE
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(resolved, flags, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %v", err)
	}
	defer file.Close()

	if _, err := file.WriteString(content); err != nil {
		return "", fmt.Errorf("failed to write file: %v", err)
	}
	if err := file.Sync(); err != nil {
		return "", fmt.Errorf("failed to flush file: %v", err)
	}

	verb := "wrote"
	if appendMode {
		verb = "appended to"
	}
	return fmt.Sprintf("Successfully %s file: %s", verb, resolved), nil
}

func (f *FileTool) exists(path string) (string, error) {
	resolved, err := paths.ResolveFromWorkdir(path)
	if err != nil {
		return "", err
	}

	verdict := "does not"
	if _, err := os.Stat(resolved); err == nil {
		verdict = "does"
	}
	return fmt.Sprintf("Path '%s' %s exist", resolved, verdict), nil
}

func (f *FileTool) delete(ctx context.Context, path string) (string, error) {
	resolved, err := paths.ResolveFromWorkdir(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(resolved)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("path '%s' does not exist", resolved)
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat path: %v", err)
	}

	switch {
	case info.IsDir():
		if _, err := runCoreCommand(ctx, corerm.New(), []string{"-r", resolved}); err != nil {
			return "", fmt.Errorf("failed to delete directory: %v", err)
		}
		return fmt.Sprintf("Successfully deleted directory: %s", resolved), nil
	case info.Mode().IsRegular():
		if _, err := runCoreCommand(ctx, corerm.New(), []string{resolved}); err != nil {
			return "", fmt.Errorf("failed to delete file: %v", err)
		}
		return fmt.Sprintf("Successfully deleted file: %s", resolved), nil
	default:
		return "", fmt.Errorf("path '%s' is neither a file nor a directory", resolved)
	}
}

func (f *FileTool) move(ctx context.Context, source, destination string) (string, error) {
	resolvedSource, resolvedDest, err := f.resolvePair(source, destination)
	if err != nil {
		return "", err
	}

	if _, err := runCoreCommand(ctx, coremv.New(), []string{resolvedSource, resolvedDest}); err != nil {
		return "", fmt.Errorf("failed to move: %v", err)
	}
	return fmt.Sprintf("Successfully moved from '%s' to '%s'", resolvedSource, resolvedDest), nil
}

func (f *FileTool) copy(ctx context.Context, source, destination string) (string, error) {
	resolvedSource, resolvedDest, err := f.resolvePair(source, destination)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(resolvedSource)
	if err != nil {
		return "", fmt.Errorf("failed to stat source: %v", err)
	}

	if info.IsDir() {
		if _, err := runCoreCommand(ctx, corecp.New(), []string{"-r", resolvedSource, resolvedDest}); err != nil {
			return "", fmt.Errorf("failed to copy directory: %v", err)
		}
		return fmt.Sprintf("Successfully copied directory from '%s' to '%s'", resolvedSource, resolvedDest), nil
	}

	if _, err := runCoreCommand(ctx, corecp.New(), []string{resolvedSource, resolvedDest}); err != nil {
		return "", fmt.Errorf("failed to copy file: %v", err)
	}
	return fmt.Sprintf("Successfully copied file from '%s' to '%s'", resolvedSource, resolvedDest), nil
}

// resolvePair resolves source and destination, requires the source to
// exist, and creates missing destination parent directories.
func (f *FileTool) resolvePair(source, destination string) (string, string, error) {
	resolvedSource, err := paths.ResolveFromWorkdir(source)
	if err != nil {
		return "", "", err
	}
	resolvedDest, err := paths.ResolveFromWorkdir(destination)
	if err != nil {
		return "", "", err
	}

	if _, err := os.Stat(resolvedSource); os.IsNotExist(err) {
		return "", "", fmt.Errorf("source path '%s' does not exist", resolvedSource)
	}

	if err := os.MkdirAll(filepath.Dir(resolvedDest), 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create destination parent directory: %v", err)
	}

	return resolvedSource, resolvedDest, nil
}

// runCoreCommand executes a u-root core command with captured output.
func runCoreCommand(ctx context.Context, cmd core.Command, args []string) (string, error) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.SetIO(strings.NewReader(""), &stdout, &stderr)

	workdir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to determine working directory: %v", err)
	}
	cmd.SetWorkingDir(workdir)

	if err := cmd.RunContext(ctx, args...); err != nil {
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg != "" {
			return "", fmt.Errorf("%v: %s", err, errMsg)
		}
		return "", err
	}

	return stdout.String(), nil
}
