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
	"sort"
)

// SchemaJSON returns the JSON schema for config.json.
func SchemaJSON() string {
	return configSchemaJSON
}

// ExampleConfigJSON returns a minimal example config derived from the schema.
func ExampleConfigJSON() string {
	return exampleConfigJSON
}

// normalizeConfigJSON rejects unknown fields before the typed unmarshal, so
// a typo in config.json fails loudly instead of being silently ignored.
func normalizeConfigJSON(data []byte) ([]byte, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if err := validateConfigMap(raw, ""); err != nil {
		return nil, err
	}
	normalized, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	return normalized, nil
}

func validateConfigMap(raw map[string]interface{}, prefix string) error {
	allowed := map[string]func(interface{}) error{
		"api_key": func(v interface{}) error { return validateString(v, prefix+"api_key") },
		"api_url": func(v interface{}) error { return validateString(v, prefix+"api_url") },
		"model":   func(v interface{}) error { return validateString(v, prefix+"model") },
		"history_file": func(v interface{}) error {
			return validateString(v, prefix+"history_file")
		},
		"tools": func(v interface{}) error {
			return validateToolsConfig(v, prefix+"tools.")
		},
		"tool_limits": func(v interface{}) error {
			return validateToolLimits(v, prefix+"tool_limits.")
		},
		"tool_output_filters": func(v interface{}) error {
			return validateToolOutputFilters(v, prefix+"tool_output_filters.")
		},
		"command_policy": func(v interface{}) error {
			return validateCommandPolicy(v, prefix+"command_policy.")
		},
	}

	return validateSection(raw, allowed, prefix)
}

func validateToolsConfig(value interface{}, prefix string) error {
	section, ok := value.(map[string]interface{})
	if !ok {
		return fmt.Errorf("%stools must be an object", prefix)
	}
	allowed := map[string]func(interface{}) error{
		"allow":                func(v interface{}) error { return validateStringArray(v, prefix+"allow") },
		"require_confirmation": func(v interface{}) error { return validateStringArray(v, prefix+"require_confirmation") },
	}
	return validateSection(section, allowed, prefix)
}

func validateToolLimits(value interface{}, prefix string) error {
	section, ok := value.(map[string]interface{})
	if !ok {
		return fmt.Errorf("%stool_limits must be an object", prefix)
	}
	allowed := map[string]func(interface{}) error{
		"max_output_chars":    func(v interface{}) error { return validateNumber(v, prefix+"max_output_chars") },
		"max_file_size_bytes": func(v interface{}) error { return validateNumber(v, prefix+"max_file_size_bytes") },
		"max_list_entries":    func(v interface{}) error { return validateNumber(v, prefix+"max_list_entries") },
		"max_search_depth":    func(v interface{}) error { return validateNumber(v, prefix+"max_search_depth") },
	}
	return validateSection(section, allowed, prefix)
}

func validateToolOutputFilters(value interface{}, prefix string) error {
	section, ok := value.(map[string]interface{})
	if !ok {
		return fmt.Errorf("%stool_output_filters must be an object", prefix)
	}
	allowed := map[string]func(interface{}) error{
		"strip_ansi":    func(v interface{}) error { return validateBool(v, prefix+"strip_ansi") },
		"strip_control": func(v interface{}) error { return validateBool(v, prefix+"strip_control") },
	}
	return validateSection(section, allowed, prefix)
}

func validateCommandPolicy(value interface{}, prefix string) error {
	section, ok := value.(map[string]interface{})
	if !ok {
		return fmt.Errorf("%scommand_policy must be an object", prefix)
	}
	allowed := map[string]func(interface{}) error{
		"ban":           func(v interface{}) error { return validateStringArray(v, prefix+"ban") },
		"safe_prefixes": func(v interface{}) error { return validateStringArray(v, prefix+"safe_prefixes") },
	}
	return validateSection(section, allowed, prefix)
}

func validateSection(section map[string]interface{}, allowed map[string]func(interface{}) error, prefix string) error {
	keys := make([]string, 0, len(section))
	for key := range section {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		validator, ok := allowed[key]
		if !ok {
			return fmt.Errorf("unknown configuration field %q", prefix+key)
		}
		if err := validator(section[key]); err != nil {
			return err
		}
	}
	return nil
}

func validateString(value interface{}, name string) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("%s must be a string", name)
	}
	return nil
}

func validateNumber(value interface{}, name string) error {
	if _, ok := value.(float64); !ok {
		return fmt.Errorf("%s must be a number", name)
	}
	return nil
}

func validateBool(value interface{}, name string) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("%s must be a boolean", name)
	}
	return nil
}

func validateStringArray(value interface{}, name string) error {
	list, ok := value.([]interface{})
	if !ok {
		return fmt.Errorf("%s must be an array of strings", name)
	}
	for _, item := range list {
		if _, ok := item.(string); !ok {
			return fmt.Errorf("%s must be an array of strings", name)
		}
	}
	return nil
}

const configSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Gofer Config",
  "type": "object",
  "properties": {
    "api_key": { "type": "string" },
    "api_url": { "type": "string" },
    "model": { "type": "string" },
    "history_file": { "type": "string" },
    "tools": {
      "type": "object",
      "properties": {
        "allow": { "type": "array", "items": { "type": "string" } },
        "require_confirmation": { "type": "array", "items": { "type": "string" } }
      }
    },
    "tool_limits": {
      "type": "object",
      "properties": {
        "max_output_chars": { "type": "number" },
        "max_file_size_bytes": { "type": "number" },
        "max_list_entries": { "type": "number" },
        "max_search_depth": { "type": "number" }
      }
    },
    "tool_output_filters": {
      "type": "object",
      "properties": {
        "strip_ansi": { "type": "boolean" },
        "strip_control": { "type": "boolean" }
      }
    },
    "command_policy": {
      "type": "object",
      "properties": {
        "ban": { "type": "array", "items": { "type": "string" } },
        "safe_prefixes": { "type": "array", "items": { "type": "string" } }
      }
    }
  }
}`

const exampleConfigJSON = `{
  "api_key": "sk-...",
  "api_url": "https://api.openai.com/v1",
  "model": "gpt-4o",
  "tools": {
    "allow": ["bash", "file", "ls", "find_file"],
    "require_confirmation": ["bash"]
  }
}`
