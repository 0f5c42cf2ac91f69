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
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sashabaranov/go-openai"
)

// Default allow/confirm lists for built-in tools.
var (
	DefaultAllowList   = []string{"bash", "file", "ls", "find_file"}
	DefaultConfirmList = []string{"bash"}
)

// ToolResult represents the result of a tool execution. Result always holds
// agent-consumable text: failures are rendered into it before the result
// crosses the gateway boundary, so callers never need more than string
// inspection.
type ToolResult struct {
	Function string
	Result   string
	Error    error
}

// Permission describes the policy for a tool.
type Permission struct {
	Allowed             bool
	RequireConfirmation bool
}

// Policy configures which tools are allowed and which require confirmation.
type Policy struct {
	Allowed             map[string]bool
	RequireConfirmation map[string]bool
}

// ExecuteOptions controls how tool execution is handled.
type ExecuteOptions struct {
	// Force bypasses policy checks and confirmation requirements (use only after explicit user consent).
	Force bool
}

// Registry holds all available tools with their implementations. It is the
// single dispatch point between tool-call requests and tool invocations.
type Registry struct {
	mu           sync.RWMutex
	tools        map[string]Tool
	permissions  map[string]Permission
	rateLimiters *rateLimiterSet
}

// NewRegistry creates a new tool registry and registers all built-in tools.
func NewRegistry() *Registry {
	return NewRegistryWithPolicy(DefaultPolicy())
}

// NewRegistryWithPolicy creates a registry with the provided policy.
func NewRegistryWithPolicy(policy Policy) *Registry {
	r := &Registry{
		tools:        make(map[string]Tool),
		permissions:  make(map[string]Permission),
		rateLimiters: newRateLimiterSet(DefaultRateLimitConfig()),
	}

	registerBuiltinTools(r)
	r.applyPolicy(DefaultPolicy())
	r.applyPolicy(policy)

	return r
}

// RegisterTool adds a new tool with its implementation to the registry.
func (r *Registry) RegisterTool(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
	if _, ok := r.permissions[tool.Name()]; !ok {
		// Unknown tools default to blocked + confirmation.
		r.permissions[tool.Name()] = Permission{Allowed: false, RequireConfirmation: true}
	}
}

// applyPolicy merges the provided policy into the registry permissions.
func (r *Registry) applyPolicy(policy Policy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name := range r.tools {
		perm, ok := r.permissions[name]
		if !ok {
			perm = Permission{Allowed: false, RequireConfirmation: true}
		}
		if policy.Allowed != nil {
			perm.Allowed = policy.Allowed[name]
		}
		if policy.RequireConfirmation != nil {
			perm.RequireConfirmation = policy.RequireConfirmation[name]
		}
		r.permissions[name] = perm
	}
}

// DefaultPolicy returns the default allow/confirm policy.
func DefaultPolicy() Policy {
	return PolicyFromLists(DefaultAllowList, DefaultConfirmList)
}

// PolicyFromLists builds a policy from allow/confirmation lists.
func PolicyFromLists(allow, confirm []string) Policy {
	allowMap := make(map[string]bool, len(allow))
	for _, name := range allow {
		allowMap[name] = true
	}
	confirmMap := make(map[string]bool, len(confirm))
	for _, name := range confirm {
		confirmMap[name] = true
	}
	return Policy{
		Allowed:             allowMap,
		RequireConfirmation: confirmMap,
	}
}

// GetToolNames returns a sorted list of all tool names.
func (r *Registry) GetToolNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenAITools returns the registry as OpenAI tool definitions.
func (r *Registry) OpenAITools() []openai.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]openai.Tool, 0, len(names))
	for _, name := range names {
		tool := r.tools[name]
		defs = append(defs, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name(),
				Description: tool.Description(),
				Parameters:  tool.Parameters(),
			},
		})
	}
	return defs
}

// Execute runs the specified tool with given arguments.
func (r *Registry) Execute(ctx context.Context, function string, args map[string]interface{}) *ToolResult {
	return r.ExecuteWithOptions(ctx, function, args, ExecuteOptions{})
}

// ExecuteWithOptions runs the tool using the provided options. It never
// panics and never lets a tool error escape as anything but result text.
func (r *Registry) ExecuteWithOptions(ctx context.Context, function string, args map[string]interface{}, opts ExecuteOptions) *ToolResult {
	result := &ToolResult{
		Function: function,
	}

	tool, exists := r.getTool(function)
	if !exists {
		result.Error = fmt.Errorf("%w: %s", ErrToolNotFound, function)
		result.Result = fmt.Sprintf("Error: Tool '%s' not found. Available tools: %v", function, r.GetToolNames())
		return result
	}

	if !opts.Force {
		perm := r.getPermission(function)
		if !perm.Allowed {
			result.Error = fmt.Errorf("%w: %s", ErrToolNotAllowed, function)
			result.Result = fmt.Sprintf("Tool '%s' is blocked by policy. Enable it to proceed.", function)
			return result
		}
		if perm.RequireConfirmation {
			result.Error = fmt.Errorf("%w: %s", ErrToolRequiresConfirmation, function)
			result.Result = fmt.Sprintf("Tool '%s' requires explicit approval before running.", function)
			return result
		}
	}

	if err := r.rateLimiters.Allow(function); err != nil {
		result.Error = err
		result.Result = fmt.Sprintf("Error: %v", err)
		return result
	}

	if err := tool.Validate(args); err != nil {
		result.Error = fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		result.Result = fmt.Sprintf("Error: %v", err)
		return result
	}

	result.Result, result.Error = tool.Execute(ctx, args)
	if result.Error != nil && result.Result == "" {
		result.Result = fmt.Sprintf("Error: %v", result.Error)
	}
	return result
}

// ExecuteToolCall executes an OpenAI tool call payload.
func (r *Registry) ExecuteToolCall(ctx context.Context, call openai.ToolCall) *ToolResult {
	return r.ExecuteToolCallWithOptions(ctx, call, ExecuteOptions{})
}

// ExecuteToolCallWithOptions executes a tool call with execution options.
func (r *Registry) ExecuteToolCallWithOptions(ctx context.Context, call openai.ToolCall, opts ExecuteOptions) *ToolResult {
	name := call.Function.Name
	if name == "" {
		err := fmt.Errorf("tool call missing function name")
		return &ToolResult{
			Function: "unknown_tool",
			Error:    err,
			Result:   fmt.Sprintf("Error: %v", err),
		}
	}

	args, err := parseToolArgs(call.Function.Arguments)
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		return &ToolResult{
			Function: name,
			Error:    wrapped,
			Result:   fmt.Sprintf("Error: %v", wrapped),
		}
	}

	return r.ExecuteWithOptions(ctx, name, args, opts)
}

// SetAllowed toggles whether a tool is allowed.
func (r *Registry) SetAllowed(name string, allowed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	perm := r.permissions[name]
	perm.Allowed = allowed
	r.permissions[name] = perm
}

// SetRequireConfirmation toggles per-tool confirmation.
func (r *Registry) SetRequireConfirmation(name string, require bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	perm := r.permissions[name]
	perm.RequireConfirmation = require
	r.permissions[name] = perm
}

// GetPermission returns the current permission entry for a tool.
func (r *Registry) GetPermission(name string) Permission {
	return r.getPermission(name)
}

// Close releases background resources held by the registry.
func (r *Registry) Close() {
	r.rateLimiters.Stop()
}

// getTool safely retrieves a tool definition.
func (r *Registry) getTool(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// getPermission safely fetches permissions for a tool.
func (r *Registry) getPermission(name string) Permission {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if perm, ok := r.permissions[name]; ok {
		return perm
	}
	// Default for unknown tools: blocked and requires confirmation.
	return Permission{Allowed: false, RequireConfirmation: true}
}
