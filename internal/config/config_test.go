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
	"os"
	"path/filepath"
	"testing"

	"gofer/internal/tools"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_API_URL", "")
	t.Setenv("GOFER_MODEL", "")
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("expected missing file to be fine, got %v", err)
	}
	if cfg.Model != "gpt-4o" {
		t.Fatalf("unexpected default model: %q", cfg.Model)
	}
	if len(cfg.Tools.Allow) == 0 {
		t.Fatal("expected default allow list")
	}
}

func TestLoadParsesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	payload := `{
		"api_key": "file-key",
		"model": "gpt-4o-mini",
		"tools": {
			"allow": ["ls", "file"],
			"require_confirmation": []
		},
		"tool_limits": {"max_output_chars": 5000}
	}`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.APIKey != "file-key" || cfg.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.Tools.Allow) != 2 {
		t.Fatalf("unexpected allow list: %v", cfg.Tools.Allow)
	}
	if cfg.ToolLimits.MaxOutputChars != 5000 {
		t.Fatalf("unexpected limits: %+v", cfg.ToolLimits)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("GOFER_MODEL", "env-model")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.APIKey != "env-key" {
		t.Fatalf("expected env API key, got %q", cfg.APIKey)
	}
	if cfg.Model != "env-model" {
		t.Fatalf("expected env model override, got %q", cfg.Model)
	}
}

func TestEnvDoesNotOverrideFileKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "env-key")

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"api_key": "file-key"}`), 0o600); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.APIKey != "file-key" {
		t.Fatalf("expected the file key to win, got %q", cfg.APIKey)
	}
}

func TestToolPolicy(t *testing.T) {
	cfg := &Config{
		Tools: ToolSettings{
			Allow:               []string{"ls"},
			RequireConfirmation: []string{},
		},
	}

	policy := cfg.ToolPolicy()
	if !policy.Allowed["ls"] || policy.Allowed["bash"] {
		t.Fatalf("unexpected allow map: %v", policy.Allowed)
	}
	if len(policy.RequireConfirmation) != 0 {
		t.Fatalf("expected empty confirmation map, got %v", policy.RequireConfirmation)
	}

	defaults := Default().ToolPolicy()
	if !defaults.RequireConfirmation["bash"] {
		t.Fatal("expected bash to require confirmation by default")
	}
}

func TestApplyDoesNotPanicAndRestores(t *testing.T) {
	cfg := Default()
	cfg.ToolLimits.MaxOutputChars = 1234
	cfg.CommandPolicy.Ban = []string{"rsync"}
	cfg.Apply()
	t.Cleanup(func() {
		tools.ConfigureLimits(tools.DefaultLimits())
		tools.ConfigureOutputFilters(tools.DefaultOutputFilterConfig())
		tools.ConfigureCommandPolicy(tools.CommandPolicyConfig{})
	})
}
