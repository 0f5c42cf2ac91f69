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
	"strings"
	"testing"
)

func TestNormalizeConfigJSONAcceptsKnownFields(t *testing.T) {
	payload := `{
		"api_key": "k",
		"model": "gpt-4o",
		"tools": {"allow": ["ls"], "require_confirmation": ["bash"]},
		"tool_limits": {"max_output_chars": 100, "max_search_depth": 5},
		"tool_output_filters": {"strip_ansi": true}
	}`
	if _, err := normalizeConfigJSON([]byte(payload)); err != nil {
		t.Fatalf("expected valid config to pass, got %v", err)
	}
}

func TestNormalizeConfigJSONRejectsUnknownField(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"top level", `{"api_keys": "typo"}`, `unknown configuration field "api_keys"`},
		{"nested tools", `{"tools": {"deny": ["bash"]}}`, `unknown configuration field "tools.deny"`},
		{"nested limits", `{"tool_limits": {"max_depth": 3}}`, `unknown configuration field "tool_limits.max_depth"`},
		{"nested policy", `{"command_policy": {"allow": []}}`, `unknown configuration field "command_policy.allow"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := normalizeConfigJSON([]byte(tt.payload))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q, got %v", tt.want, err)
			}
		})
	}
}

func TestNormalizeConfigJSONTypeChecks(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"string field", `{"model": 42}`, "model must be a string"},
		{"number field", `{"tool_limits": {"max_output_chars": "lots"}}`, "tool_limits.max_output_chars must be a number"},
		{"bool field", `{"tool_output_filters": {"strip_ansi": "yes"}}`, "tool_output_filters.strip_ansi must be a boolean"},
		{"string array", `{"tools": {"allow": [1]}}`, "tools.allow must be an array of strings"},
		{"object section", `{"tools": "bash"}`, "tools must be an object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := normalizeConfigJSON([]byte(tt.payload))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q, got %v", tt.want, err)
			}
		})
	}
}

func TestPublishedSchemaAndExampleAreValidJSON(t *testing.T) {
	var schema map[string]interface{}
	if err := json.Unmarshal([]byte(SchemaJSON()), &schema); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}
	if schema["type"] != "object" {
		t.Fatalf("unexpected schema root: %v", schema["type"])
	}

	// The shipped example must itself pass the strict check.
	if _, err := normalizeConfigJSON([]byte(ExampleConfigJSON())); err != nil {
		t.Fatalf("example config failed validation: %v", err)
	}
}
