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
	"strings"
	"sync"
)

// commandVerdict classifies a command line under the shell policy.
type commandVerdict int

const (
	verdictBanned commandVerdict = iota
	verdictSafe
	verdictDefaultAllowed
)

// bannedBaseCommands is an exact-match denylist of base command tokens.
// Network clients and browsers are rejected regardless of arguments.
var bannedBaseCommands = map[string]struct{}{
	"alias":       {},
	"curl":        {},
	"curlie":      {},
	"wget":        {},
	"axel":        {},
	"aria2c":      {},
	"nc":          {},
	"telnet":      {},
	"lynx":        {},
	"w3m":         {},
	"links":       {},
	"httpie":      {},
	"xh":          {},
	"http-prompt": {},
	"chrome":      {},
	"firefox":     {},
	"safari":      {},
}

// safeCommandPrefixes lists command-line prefixes that are always permitted.
var safeCommandPrefixes = []string{
	"ls", "echo", "pwd", "date", "cal", "uptime", "whoami", "id", "groups",
	"env", "printenv", "set", "unset", "which", "type", "whereis", "whatis",
	"uname", "hostname", "df", "du", "free", "top", "ps", "kill", "killall",
	"nice", "nohup", "time", "timeout",
	"git status", "git log", "git diff", "git show", "git branch", "git tag",
	"git remote", "git ls-files", "git ls-remote", "git rev-parse",
	"git config --get", "git config --list", "git describe", "git blame",
	"git grep", "git shortlog",
	"go version", "go help", "go list", "go env", "go doc", "go vet",
	"go fmt", "go mod", "go test", "go build", "go run", "go install",
	"go clean",
}

// CommandPolicyConfig extends the built-in command tables from configuration.
type CommandPolicyConfig struct {
	BanCommands  []string
	SafePrefixes []string
}

var (
	commandPolicyMu sync.RWMutex
	extraBanned     = map[string]struct{}{}
	extraSafe       []string
)

// ConfigureCommandPolicy replaces the configured policy extensions. The
// built-in tables cannot be shrunk, only extended.
func ConfigureCommandPolicy(config CommandPolicyConfig) {
	banned := make(map[string]struct{}, len(config.BanCommands))
	for _, name := range config.BanCommands {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			banned[name] = struct{}{}
		}
	}
	var safe []string
	for _, prefix := range config.SafePrefixes {
		prefix = strings.ToLower(strings.TrimSpace(prefix))
		if prefix != "" {
			safe = append(safe, prefix)
		}
	}

	commandPolicyMu.Lock()
	defer commandPolicyMu.Unlock()
	extraBanned = banned
	extraSafe = safe
}

func getCommandPolicyExtensions() (map[string]struct{}, []string) {
	commandPolicyMu.RLock()
	defer commandPolicyMu.RUnlock()
	return extraBanned, extraSafe
}

// baseCommand extracts the first whitespace-delimited token, lower-cased.
func baseCommand(commandLine string) string {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

// classifyCommand applies the denylist before the allowlist: a banned base
// command cannot be unbanned by also matching a safe prefix. Commands that
// match neither table fall through to default-allow. That permissive
// fallback is intentional; tightening it to allowlist-only is an open
// policy question.
func classifyCommand(commandLine string) commandVerdict {
	base := baseCommand(commandLine)
	banned, safe := getCommandPolicyExtensions()
	if _, ok := bannedBaseCommands[base]; ok {
		return verdictBanned
	}
	if _, ok := banned[base]; ok {
		return verdictBanned
	}
	if matchesPrefixList(commandLine, safeCommandPrefixes) || matchesPrefixList(commandLine, safe) {
		return verdictSafe
	}
	return verdictDefaultAllowed
}

// isCommandAllowed reports whether the policy permits executing the command.
func isCommandAllowed(commandLine string) bool {
	return classifyCommand(commandLine) != verdictBanned
}

// matchesSafePrefix checks the command line against the built-in safe
// prefixes, case-insensitively.
func matchesSafePrefix(commandLine string) bool {
	return matchesPrefixList(commandLine, safeCommandPrefixes)
}

// matchesPrefixList requires the prefix to end at a token boundary (end of
// string, space, or hyphen) so that a prefix like "ls" does not vouch
// for "lsx".
func matchesPrefixList(commandLine string, prefixes []string) bool {
	lower := strings.ToLower(commandLine)
	for _, prefix := range prefixes {
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		if len(lower) == len(prefix) {
			return true
		}
		switch lower[len(prefix)] {
		case ' ', '-':
			return true
		}
	}
	return false
}
