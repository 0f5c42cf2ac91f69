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

import "testing"

func TestBaseCommand(t *testing.T) {
	tests := []struct {
		command string
		want    string
	}{
		{"curl http://example.com", "curl"},
		{"  ls -la  ", "ls"},
		{"CURL -X POST", "curl"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := baseCommand(tt.command); got != tt.want {
			t.Errorf("baseCommand(%q) = %q, want %q", tt.command, got, tt.want)
		}
	}
}

func TestClassifyCommandBanned(t *testing.T) {
	banned := []string{
		"curl http://example.com",
		"CURL http://example.com",
		"wget -O - http://example.com",
		"nc -l 8080",
		"telnet host 23",
		"firefox",
		"alias rm='rm -rf'",
		"aria2c http://example.com/file.iso",
	}

	for _, command := range banned {
		if classifyCommand(command) != verdictBanned {
			t.Errorf("expected %q to be banned", command)
		}
		if isCommandAllowed(command) {
			t.Errorf("expected %q to be disallowed", command)
		}
	}
}

func TestClassifyCommandSafe(t *testing.T) {
	safe := []string{
		"ls",
		"ls -la /tmp",
		"echo hello",
		"pwd",
		"git status",
		"git status --short",
		"git log --oneline",
		"go test ./...",
		"go version",
		"GIT STATUS",
	}

	for _, command := range safe {
		if classifyCommand(command) != verdictSafe {
			t.Errorf("expected %q to classify as safe", command)
		}
	}
}

func TestClassifyCommandDefaultAllowed(t *testing.T) {
	neutral := []string{
		"make build",
		"cargo check",
		"rm -rf /tmp/scratch",
		"python3 script.py",
	}

	for _, command := range neutral {
		if classifyCommand(command) != verdictDefaultAllowed {
			t.Errorf("expected %q to fall through to default-allow", command)
		}
		if !isCommandAllowed(command) {
			t.Errorf("expected %q to be allowed", command)
		}
	}
}

func TestMatchesSafePrefixBoundary(t *testing.T) {
	tests := []struct {
		command string
		want    bool
	}{
		{"ls", true},
		{"ls -la", true},
		{"lsx", false},
		{"lsof -i", false},
		{"git status", true},
		{"git statusnow", false},
		{"git status-report", true}, // hyphen counts as a boundary
		{"echo-server", true},
		{"gogo run", false},
	}

	for _, tt := range tests {
		if got := matchesSafePrefix(tt.command); got != tt.want {
			t.Errorf("matchesSafePrefix(%q) = %v, want %v", tt.command, got, tt.want)
		}
	}
}

func TestConfigureCommandPolicyExtensions(t *testing.T) {
	ConfigureCommandPolicy(CommandPolicyConfig{
		BanCommands:  []string{" Rsync ", ""},
		SafePrefixes: []string{"make test"},
	})
	t.Cleanup(func() {
		ConfigureCommandPolicy(CommandPolicyConfig{})
	})

	if isCommandAllowed("rsync -av / remote:/") {
		t.Fatal("expected configured ban to apply")
	}
	if classifyCommand("make test ./...") != verdictSafe {
		t.Fatal("expected configured safe prefix to apply")
	}
	if classifyCommand("make testx") != verdictDefaultAllowed {
		t.Fatal("expected boundary rule to hold for configured prefixes")
	}
	// Built-in tables stay in force alongside extensions.
	if isCommandAllowed("curl http://example.com") {
		t.Fatal("expected built-in ban to survive reconfiguration")
	}
}

func TestBannedWinsOverSafePrefix(t *testing.T) {
	// A banned base command stays banned even if the line also happens to
	// start with a safe prefix.
	if classifyCommand("curl --version") != verdictBanned {
		t.Fatal("expected curl to stay banned regardless of arguments")
	}
}
