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

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gofer/internal/tools"
)

// Config represents the application configuration.
type Config struct {
	APIKey            string            `json:"api_key,omitempty"`
	APIURL            string            `json:"api_url,omitempty"`
	Model             string            `json:"model,omitempty"`
	Tools             ToolSettings      `json:"tools,omitempty"`
	ToolLimits        ToolLimits        `json:"tool_limits,omitempty"`
	ToolOutputFilters ToolOutputFilters `json:"tool_output_filters,omitempty"`
	CommandPolicy     CommandPolicy     `json:"command_policy,omitempty"`
	HistoryFile       string            `json:"history_file,omitempty"`
}

// CommandPolicy extends the built-in shell command tables.
type CommandPolicy struct {
	Ban          []string `json:"ban,omitempty"`
	SafePrefixes []string `json:"safe_prefixes,omitempty"`
}

// ToolSettings describes tool allow/confirmation lists.
type ToolSettings struct {
	Allow               []string `json:"allow,omitempty"`
	RequireConfirmation []string `json:"require_confirmation,omitempty"`
}

// ToolLimits configures resource limits for tool execution.
type ToolLimits struct {
	MaxOutputChars   int   `json:"max_output_chars,omitempty"`
	MaxFileSizeBytes int64 `json:"max_file_size_bytes,omitempty"`
	MaxListEntries   int   `json:"max_list_entries,omitempty"`
	MaxSearchDepth   int   `json:"max_search_depth,omitempty"`
}

// ToolOutputFilters configures output sanitization for tool results.
type ToolOutputFilters struct {
	StripANSI    *bool `json:"strip_ansi,omitempty"`
	StripControl *bool `json:"strip_control,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Model: "gpt-4o",
		Tools: ToolSettings{
			Allow:               tools.DefaultAllowList,
			RequireConfirmation: tools.DefaultConfirmList,
		},
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(home, ".config", "gofer", "config.json")
}

// Load reads a config file, falling back to defaults when it is missing.
// Environment variables override the API settings afterwards.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file is fine; run on defaults.
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		normalized, err := normalizeConfigJSON(data)
		if err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", path, err)
		}
		if err := json.Unmarshal(normalized, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && cfg.APIKey == "" {
		cfg.APIKey = key
	}
	if url := os.Getenv("OPENAI_API_URL"); url != "" && cfg.APIURL == "" {
		cfg.APIURL = url
	}
	if model := os.Getenv("GOFER_MODEL"); model != "" {
		cfg.Model = model
	}
}

// Apply pushes the tool-related settings into the tools package globals.
func (c *Config) Apply() {
	tools.ConfigureLimits(tools.Limits{
		MaxOutputChars:   c.ToolLimits.MaxOutputChars,
		MaxFileSizeBytes: c.ToolLimits.MaxFileSizeBytes,
		MaxListEntries:   c.ToolLimits.MaxListEntries,
		MaxSearchDepth:   c.ToolLimits.MaxSearchDepth,
	})

	filters := tools.DefaultOutputFilterConfig()
	if c.ToolOutputFilters.StripANSI != nil {
		filters.StripANSI = *c.ToolOutputFilters.StripANSI
	}
	if c.ToolOutputFilters.StripControl != nil {
		filters.StripControl = *c.ToolOutputFilters.StripControl
	}
	tools.ConfigureOutputFilters(filters)

	tools.ConfigureCommandPolicy(tools.CommandPolicyConfig{
		BanCommands:  c.CommandPolicy.Ban,
		SafePrefixes: c.CommandPolicy.SafePrefixes,
	})
}

// ToolPolicy builds the tool permission policy from the configured lists.
func (c *Config) ToolPolicy() tools.Policy {
	allow := c.Tools.Allow
	if allow == nil {
		allow = tools.DefaultAllowList
	}
	confirm := c.Tools.RequireConfirmation
	if confirm == nil {
		confirm = tools.DefaultConfirmList
	}
	return tools.PolicyFromLists(allow, confirm)
}
