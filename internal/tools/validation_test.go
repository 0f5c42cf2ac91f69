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
	"encoding/json"
	"errors"
	"testing"
)

func TestRequireStringArg(t *testing.T) {
	rule := RequireStringArg("name", "name is required")

	tests := []struct {
		label   string
		args    map[string]interface{}
		wantErr bool
	}{
		{"present", map[string]interface{}{"name": "value"}, false},
		{"missing", map[string]interface{}{}, true},
		{"nil value", map[string]interface{}{"name": nil}, true},
		{"empty string", map[string]interface{}{"name": "  "}, true},
		{"wrong type", map[string]interface{}{"name": 42}, true},
	}

	for _, tt := range tests {
		err := rule(tt.args)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: got err=%v, wantErr=%v", tt.label, err, tt.wantErr)
		}
	}
}

func TestChainValidation(t *testing.T) {
	first := errors.New("first failed")
	failing := func(map[string]interface{}) error { return first }
	passing := func(map[string]interface{}) error { return nil }

	if err := ChainValidation(passing, nil, passing)(nil); err != nil {
		t.Fatalf("expected chain of passing rules to succeed, got %v", err)
	}
	if err := ChainValidation(passing, failing, passing)(nil); !errors.Is(err, first) {
		t.Fatalf("expected first failure to surface, got %v", err)
	}
}

func TestGetIntArg(t *testing.T) {
	tests := []struct {
		label  string
		value  interface{}
		want   int64
		wantOK bool
	}{
		{"float64", float64(1500), 1500, true},
		{"int", 7, 7, true},
		{"int64", int64(9), 9, true},
		{"json.Number", json.Number("42"), 42, true},
		{"bad json.Number", json.Number("x"), 0, false},
		{"string", "10", 0, false},
		{"missing", nil, 0, false},
	}

	for _, tt := range tests {
		args := map[string]interface{}{}
		if tt.value != nil {
			args["key"] = tt.value
		}
		got, ok := getIntArg(args, "key")
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("%s: got (%d, %v), want (%d, %v)", tt.label, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestGetStringSliceArg(t *testing.T) {
	args := map[string]interface{}{
		"patterns": []interface{}{"*.go", "", 3, "*.md"},
		"scalar":   "oops",
	}

	got := getStringSliceArg(args, "patterns")
	if len(got) != 2 || got[0] != "*.go" || got[1] != "*.md" {
		t.Fatalf("expected string entries only, got %v", got)
	}
	if getStringSliceArg(args, "scalar") != nil {
		t.Fatal("expected nil for non-slice value")
	}
	if getStringSliceArg(args, "missing") != nil {
		t.Fatal("expected nil for missing key")
	}
}

func TestParseToolArgs(t *testing.T) {
	args, err := parseToolArgs("")
	if err != nil || len(args) != 0 {
		t.Fatalf("expected empty args for empty payload, got %v (err: %v)", args, err)
	}

	args, err = parseToolArgs(`{"command": "ls", "timeout": 500}`)
	if err != nil {
		t.Fatalf("expected parse success, got %v", err)
	}
	if getStringArg(args, "command") != "ls" {
		t.Fatalf("unexpected args: %v", args)
	}
	if ms, ok := getIntArg(args, "timeout"); !ok || ms != 500 {
		t.Fatalf("expected timeout 500, got %d (%v)", ms, ok)
	}

	if _, err := parseToolArgs(`{"command"`); err == nil {
		t.Fatal("expected parse failure for malformed JSON")
	}
}
