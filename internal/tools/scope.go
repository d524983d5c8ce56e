package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kodestack/chainguard/internal/config"
	"github.com/kodestack/chainguard/internal/project"
)

// splitList parses a newline- or comma-separated argument into a trimmed,
// non-empty string slice. Tool arguments here are plain strings, not arrays
// -- every tool in the grounding corpus takes mcp.WithString/req.GetString
// exclusively, so list-shaped arguments are encoded the same way.
func splitList(raw string) []string {
	raw = strings.ReplaceAll(raw, "\n", ",")
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func setScopeDefinition() mcp.Tool {
	return mcp.NewTool("set_scope",
		mcp.WithDescription("Declare the task about to be worked on: description, mode, modules, "+
			"acceptance criteria. Replaces any existing scope and resets scope-local counters (I6). "+
			"Always allowed, even without an active scope."),
		mcp.WithString("description", mcp.Required(), mcp.Description("What this task is about.")),
		mcp.WithString("mode", mcp.Description("programming|content|devops|research|generic. Unknown values fall back to programming.")),
		mcp.WithString("modules", mcp.Description("Comma- or newline-separated glob patterns the tracked files must match.")),
		mcp.WithString("acceptance_criteria", mcp.Description("Comma- or newline-separated list of criteria finish() checks before completing.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func setScopeHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	description := req.GetString("description", "")
	if description == "" {
		return "", false, fmt.Errorf("'description' is required")
	}

	truncated := false
	if len(description) > config.ScopeDescriptionMaxLen {
		description = description[:config.ScopeDescriptionMaxLen]
		truncated = true
	}

	mode := project.NormalizeMode(req.GetString("mode", "programming"))
	modules := splitList(req.GetString("modules", ""))
	criteria := splitList(req.GetString("acceptance_criteria", ""))

	def := &project.ScopeDefinition{
		Description:        description,
		Modules:            modules,
		AcceptanceCriteria: criteria,
		CreatedAt:          time.Now(),
	}

	preamble := project.SetScope(st, def, mode, truncated)
	return fmt.Sprintf("✓ Scope: %s (mode=%s)\n\n%s", description, mode, preamble), true, nil
}
