// Package prompts implements MCP prompt handlers for chainguard.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// StartPrompt handles the chainguard-start MCP prompt. It guides the
// agent through declaring a scope before touching any files.
type StartPrompt struct{}

// NewStartPrompt creates a StartPrompt.
func NewStartPrompt() *StartPrompt {
	return &StartPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StartPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("chainguard-start",
		mcp.WithPromptDescription(
			"Begin a new task under chainguard's enforcement: declare a scope, "+
				"mode, and acceptance criteria before any file is touched.",
		),
		mcp.WithArgument("description",
			mcp.ArgumentDescription("What the task is about"),
		),
		mcp.WithArgument("mode",
			mcp.ArgumentDescription(
				"programming|content|devops|research|generic. Default: programming",
			),
		),
	)
}

// Handle processes the chainguard-start prompt request.
func (p *StartPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	description := "this task"
	if args := req.Params.Arguments; args != nil {
		if d, ok := args["description"]; ok && d != "" {
			description = d
		}
	}

	mode := "programming"
	if args := req.Params.Arguments; args != nil {
		if m, ok := args["mode"]; ok && m != "" {
			mode = m
		}
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Start chainguard scope: %s", description),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I'm starting work on '%s' in %s mode, under chainguard's enforcement.\n\n"+
						"Please:\n"+
						"1. Call `set_scope` with description='%s', mode='%s', and whatever modules/"+
						"acceptance_criteria make sense for this task\n"+
						"2. Echo ctx=\"🔗\" on every subsequent tool call, as the response instructs\n"+
						"3. Call `track` after every file you edit or create\n"+
						"4. Call `finish` once the work is done — it won't let you stop with failing "+
						"checks or unacknowledged blocking alerts",
					description, mode, description, mode,
				)),
			},
		},
	}, nil
}
