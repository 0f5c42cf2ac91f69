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

// Argument structs for the built-in tools. The json/jsonschema tags are the
// external contract consumed by the model provider's function-calling
// mechanism; the field names must stay stable strings.

type bashArgs struct {
	Command string  `json:"command" jsonschema:"description=The shell command to execute"`
	Timeout float64 `json:"timeout,omitempty" jsonschema:"description=Optional timeout in milliseconds (max 600000)"`
}

type fileArgs struct {
	Operation   string `json:"operation" jsonschema:"description=The operation to perform: 'read'; 'write'; 'exists'; 'delete'; 'move' or 'copy'"`
	Path        string `json:"path,omitempty" jsonschema:"description=The path to the file to read; write; check or delete"`
	Content     string `json:"content,omitempty" jsonschema:"description=The content to write to the file (for write operation)"`
	Append      bool   `json:"append,omitempty" jsonschema:"description=Whether to append to the file instead of overwriting it (for write operation)"`
	Source      string `json:"source,omitempty" jsonschema:"description=The source path for move or copy operations"`
	Destination string `json:"destination,omitempty" jsonschema:"description=The destination path for move or copy operations"`
}

type lsArgs struct {
	Path   string   `json:"path" jsonschema:"description=The absolute path to the directory to list (must be absolute; not relative)"`
	Ignore []string `json:"ignore,omitempty" jsonschema:"description=List of glob patterns to ignore"`
}

type findArgs struct {
	Filename          string `json:"filename" jsonschema:"description=The exact name of the file to search for (e.g. 'main.go' or 'README.md')"`
	SearchPath        string `json:"search_path,omitempty" jsonschema:"description=Optional. The relative path of the directory where the recursive search should begin. Defaults to the current working directory if omitted."`
	IncludeHiddenDirs bool   `json:"include_hidden_dirs,omitempty" jsonschema:"description=Optional. Whether to search inside hidden directories (like '.git'). Defaults to false."`
}
