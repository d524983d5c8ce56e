package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the chainguard-status MCP prompt. It instructs
// the agent to read and present the current project's enforcement state.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("chainguard-status",
		mcp.WithPromptDescription(
			"Check the current project's chainguard status: scope, phase, "+
				"validation/test counters, and open alerts.",
		),
	)
}

// Handle processes the chainguard-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Chainguard Project Status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please call `status` and `context` to check my chainguard project state.\n\n" +
						"Then:\n" +
						"1. Show me the current phase, scope, and counters in a clear, visual format\n" +
						"2. Highlight any blocking alerts or stale schema/HTTP checks\n" +
						"3. Tell me exactly what I should do next to reach finish()",
				),
			},
		},
	}, nil
}
