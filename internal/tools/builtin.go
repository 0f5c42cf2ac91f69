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

// registerBuiltinTools registers the built-in capability tools. Each
// registry owns its own tool instances; the shell tool's tracked working
// directory lives for the registry's lifetime.
func registerBuiltinTools(r *Registry) {
	bash := NewBashTool()
	file := NewFileTool()
	ls := NewLsTool()
	find := NewFindFileTool()

	r.RegisterTool(&ToolDefinition{
		NameValue: "bash",
		DescriptionValue: "Execute a bash command with optional timeout and return its output. " +
			"Network clients (curl, wget, nc, ...) and browsers are banned for security. " +
			"Output over the size cap is truncated in the middle. " +
			"The timeout is in milliseconds, default 60000, maximum 600000. " +
			"`cd` persists across calls; prefer absolute paths over cd where possible.",
		ParametersValue: mustSchemaParametersFor[bashArgs](),
		ExecuteFunc:     executeBash(bash),
		ValidateFunc:    RequireStringArg("command", "missing or invalid 'command' parameter"),
	})

	r.RegisterTool(&ToolDefinition{
		NameValue: "file",
		DescriptionValue: "File operations: read, write (with optional append), exists, delete, move, copy. " +
			"Set 'operation' to one of exactly 'read', 'write', 'exists', 'delete', 'move', 'copy'. " +
			"read/write/exists/delete take 'path'; move/copy take 'source' and 'destination'. " +
			"Relative paths are resolved against the current working directory. " +
			"Parent directories are created as needed when writing or copying; " +
			"copying a directory copies its whole tree. Large read output is truncated.",
		ParametersValue: mustSchemaParametersFor[fileArgs](),
		ExecuteFunc:     file.Execute,
		ValidateFunc:    RequireStringArg("operation", "missing or invalid 'operation' parameter"),
	})

	r.RegisterTool(&ToolDefinition{
		NameValue: "ls",
		DescriptionValue: "List a directory recursively as a flat list plus a tree view. " +
			"Hidden entries, common build directories and compiled artifacts are skipped, " +
			"plus anything matching the optional 'ignore' glob patterns. " +
			"Listings stop after 1000 entries and are flagged as truncated.",
		ParametersValue: mustSchemaParametersFor[lsArgs](),
		ExecuteFunc:     ls.Execute,
		ValidateFunc:    RequireStringArg("path", "missing or invalid 'path' parameter"),
	})

	r.RegisterTool(&ToolDefinition{
		NameValue: "find_file",
		DescriptionValue: "Recursively search for a file by exact name under 'search_path' " +
			"(default: current working directory) and return the content of the first match. " +
			"Hidden directories are skipped unless 'include_hidden_dirs' is set. " +
			"Search depth is limited to 10 levels.",
		ParametersValue: mustSchemaParametersFor[findArgs](),
		ExecuteFunc:     find.Execute,
		ValidateFunc:    RequireStringArg("filename", "missing or invalid 'filename' parameter"),
	})
}
