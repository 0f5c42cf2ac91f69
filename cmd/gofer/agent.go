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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"gofer/internal/config"
	"gofer/internal/tools"
)

const prompt = "gofer> "

// agent drives the conversation loop: user input goes to the model, model
// tool calls go to the registry, tool results go back to the model.
type agent struct {
	client      *openai.Client
	registry    *tools.Registry
	model       string
	log         zerolog.Logger
	interactive bool
	historyFile string
	rl          *readline.Instance
	messages    []openai.ChatCompletionMessage
}

func newAgent(client *openai.Client, registry *tools.Registry, cfg *config.Config, logger zerolog.Logger, interactive bool, systemPrompt string) *agent {
	return &agent{
		client:      client,
		registry:    registry,
		model:       cfg.Model,
		log:         logger,
		interactive: interactive,
		historyFile: cfg.HistoryFile,
		messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		},
	}
}

func (a *agent) run() error {
	if !a.interactive {
		return a.runBatch()
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:      prompt,
		HistoryFile: a.historyFile,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()
	a.rl = rl

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/tools":
			fmt.Println(strings.Join(a.registry.GetToolNames(), ", "))
			continue
		}

		if err := a.processTurn(context.Background(), line); err != nil {
			color.Red("error: %v", err)
			a.log.Error().Err(err).Msg("turn failed")
		}
	}
}

// runBatch reads one prompt from stdin and runs a single turn.
func (a *agent) runBatch() error {
	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	text := strings.TrimSpace(string(input))
	if text == "" {
		return nil
	}
	return a.processTurn(context.Background(), text)
}

// processTurn sends the user input and keeps exchanging tool calls and
// results with the model until it answers with plain content.
func (a *agent) processTurn(ctx context.Context, input string) error {
	a.messages = append(a.messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: input,
	})

	for {
		resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    a.model,
			Messages: a.messages,
			Tools:    a.registry.OpenAITools(),
		})
		if err != nil {
			return fmt.Errorf("chat completion failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("chat completion returned no choices")
		}

		message := resp.Choices[0].Message
		a.messages = append(a.messages, message)

		if len(message.ToolCalls) == 0 {
			fmt.Println(message.Content)
			return nil
		}

		for _, call := range message.ToolCalls {
			result := a.executeToolCall(ctx, call)
			a.messages = append(a.messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    result.Result,
				Name:       call.Function.Name,
				ToolCallID: call.ID,
			})
		}
	}
}

func (a *agent) executeToolCall(ctx context.Context, call openai.ToolCall) *tools.ToolResult {
	color.Cyan("[%s] %s", call.Function.Name, call.Function.Arguments)
	a.log.Debug().
		Str("tool", call.Function.Name).
		Str("args", call.Function.Arguments).
		Msg("tool call")

	if invalid := a.registry.ValidateToolCall(call.Function.Name, call.Function.Arguments); invalid != nil {
		return invalid
	}

	result := a.registry.ExecuteToolCall(ctx, call)
	if errors.Is(result.Error, tools.ErrToolRequiresConfirmation) && a.interactive && a.rl != nil {
		if a.confirmToolCall(call) {
			result = a.registry.ExecuteToolCallWithOptions(ctx, call, tools.ExecuteOptions{Force: true})
		} else {
			result = &tools.ToolResult{
				Function: call.Function.Name,
				Result:   fmt.Sprintf("Tool '%s' call was denied by the user.", call.Function.Name),
			}
		}
	}

	if result.Error != nil {
		a.log.Warn().Err(result.Error).Str("tool", result.Function).Msg("tool call failed")
	}
	return result
}

// confirmToolCall asks the user before running a confirmation-gated tool.
func (a *agent) confirmToolCall(call openai.ToolCall) bool {
	a.rl.SetPrompt(color.YellowString("run %s? [y/N] ", call.Function.Name))
	defer a.rl.SetPrompt(prompt)

	line, err := a.rl.Readline()
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
