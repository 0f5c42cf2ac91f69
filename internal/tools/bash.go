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
	"os/exec"
	"runtime"
	"strings"
	"time"

	"gofer/internal/paths"
)

// BashTool executes shell command lines under the command policy with a
// bounded timeout. It tracks a synthetic working directory across calls so
// the model sees shell-like `cd` persistence without a persistent shell
// process.
type BashTool struct {
	// workdir is exclusively owned by this instance. The cd update is a
	// read-modify-write with no lock: callers must not invoke Execute
	// concurrently on the same instance without external serialization.
	workdir string
}

// NewBashTool creates a shell executor rooted at the process working directory.
func NewBashTool() *BashTool {
	return &BashTool{workdir: "."}
}

// WorkingDirectory returns the tracked working directory.
func (b *BashTool) WorkingDirectory() string {
	return b.workdir
}

// Execute runs a command line and returns agent-consumable text. All
// failure modes (empty command, policy rejection, spawn failure, non-zero
// exit, timeout) are rendered into the returned string; the error return is
// non-nil only alongside that text so callers can log it.
func (b *BashTool) Execute(ctx context.Context, command string, timeoutMS int64, timeoutRequested bool) (string, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return "Error: Command is empty", ErrInvalidArguments
	}

	if !isCommandAllowed(command) {
		base := baseCommand(command)
		return fmt.Sprintf("Error: Command '%s' is not allowed for security reasons", base),
			fmt.Errorf("%w: %s", ErrCommandBanned, base)
	}

	timeout := effectiveTimeout(timeoutMS, timeoutRequested)
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	shell, shellFlag := shellInvocation()
	cmd := exec.CommandContext(runCtx, shell, shellFlag, command)
	cmd.Dir = b.workdir
	// Grandchildren inheriting the output pipes must not keep Wait hanging
	// past the deadline.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start).Milliseconds()

	if runCtx.Err() == context.DeadlineExceeded {
		// CommandContext has already killed the child; no partial output
		// is assembled.
		return fmt.Sprintf("Command execution timed out after %dms", elapsed), nil
	}

	if runErr != nil && cmd.ProcessState == nil {
		// The shell never started (e.g. binary missing).
		return fmt.Sprintf("Error executing command: %v", runErr), nil
	}

	exitCode := cmd.ProcessState.ExitCode()
	result := assembleCommandOutput(decodePermissive(stdout.Bytes()), decodePermissive(stderr.Bytes()), exitCode)

	if exitCode == 0 {
		if target, ok := strings.CutPrefix(command, "cd "); ok {
			b.trackWorkingDirectory(strings.TrimSpace(target))
		}
	}

	governed := governOutput(result)
	if governed == "" {
		return fmt.Sprintf("Command executed successfully in %dms (no output)", elapsed), nil
	}
	return fmt.Sprintf("%s\n\nCommand completed in %dms", governed, elapsed), nil
}

// trackWorkingDirectory commits a new working directory after a successful
// `cd`. The target is resolved against the current tracked directory and
// committed only if it names an existing directory; a bad target leaves the
// tracked state untouched.
func (b *BashTool) trackWorkingDirectory(target string) {
	if target == "" {
		return
	}
	resolved, err := paths.Resolve(target, b.workdir)
	if err != nil {
		return
	}
	if paths.IsExistingDir(resolved) {
		b.workdir = resolved
	}
}

// assembleCommandOutput concatenates stdout, stderr and a non-zero exit
// code annotation.
func assembleCommandOutput(stdout, stderr string, exitCode int) string {
	var result strings.Builder
	result.WriteString(stdout)

	if stderr != "" {
		if result.Len() > 0 {
			result.WriteString("\n")
		}
		result.WriteString(stderr)
	}

	if exitCode != 0 {
		if result.Len() > 0 {
			result.WriteString("\n")
		}
		fmt.Fprintf(&result, "Exit code: %d", exitCode)
	}

	return result.String()
}

// decodePermissive converts raw process output to a string, replacing
// invalid UTF-8 sequences instead of erroring.
func decodePermissive(raw []byte) string {
	return strings.ToValidUTF8(string(raw), "�")
}

func shellInvocation() (string, string) {
	if runtime.GOOS == "windows" {
		return "cmd", "/C"
	}
	return "bash", "-c"
}

// executeBash adapts a BashTool to the registry executor signature.
func executeBash(b *BashTool) ExecutorFunc {
	return func(ctx context.Context, args map[string]interface{}) (string, error) {
		command := getStringArg(args, "command")
		timeoutMS, timeoutRequested := getIntArg(args, "timeout")
		return b.Execute(ctx, command, timeoutMS, timeoutRequested)
	}
}
