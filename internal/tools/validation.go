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
	"fmt"
	"strings"
)

// ValidationRule checks tool arguments and returns an error if invalid.
type ValidationRule func(args map[string]interface{}) error

// ValidateToolCall validates a tool call before execution. It returns a
// ToolResult describing the failure, or nil when the call is valid.
func (r *Registry) ValidateToolCall(name, argsJSON string) *ToolResult {
	tool, ok := r.getTool(name)
	if !ok {
		return invalidToolResult(name, fmt.Errorf("%w: tool %q not found", ErrToolNotFound, name))
	}

	args, err := parseToolArgs(argsJSON)
	if err != nil {
		return invalidToolResult(name, fmt.Errorf("%w: %v", ErrInvalidArguments, err))
	}

	if err := tool.Validate(args); err != nil {
		return invalidToolResult(name, fmt.Errorf("%w: %v", ErrInvalidArguments, err))
	}

	return nil
}

func invalidToolResult(name string, err error) *ToolResult {
	return &ToolResult{
		Function: name,
		Result:   fmt.Sprintf("Error: %v", err),
		Error:    err,
	}
}

func parseToolArgs(argsJSON string) (map[string]interface{}, error) {
	args := map[string]interface{}{}
	if strings.TrimSpace(argsJSON) == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return nil, err
	}
	return args, nil
}

// ChainValidation runs rules in order until the first error.
func ChainValidation(rules ...ValidationRule) ValidationRule {
	return func(args map[string]interface{}) error {
		for _, rule := range rules {
			if rule == nil {
				continue
			}
			if err := rule(args); err != nil {
				return err
			}
		}
		return nil
	}
}

// RequireStringArg ensures a string argument is present and non-empty.
func RequireStringArg(key, message string) ValidationRule {
	return func(args map[string]interface{}) error {
		value, ok := args[key]
		if !ok || value == nil {
			return fmt.Errorf("%s", message)
		}
		str, ok := value.(string)
		if !ok || strings.TrimSpace(str) == "" {
			return fmt.Errorf("%s", message)
		}
		return nil
	}
}

// Loosely-typed argument accessors. Model-generated JSON is not trusted to
// carry the declared types, so absence and wrong types read as zero values.

func getStringArg(args map[string]interface{}, key string) string {
	val, ok := args[key].(string)
	if !ok {
		return ""
	}
	return val
}

func getBoolArg(args map[string]interface{}, key string) bool {
	val, ok := args[key].(bool)
	return ok && val
}

// getIntArg reads an integer argument. JSON numbers arrive as float64.
func getIntArg(args map[string]interface{}, key string) (int64, bool) {
	switch v := args[key].(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func getStringSliceArg(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
