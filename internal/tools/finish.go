package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kodestack/chainguard/internal/project"
)

func finishDefinition() mcp.Tool {
	return mcp.NewTool("finish",
		mcp.WithDescription("Two-phase completion gate (§4.5 semantics): the first call with confirmed unset computes "+
			"an impact report and returns it without completing; a follow-up call with confirmed=\"true\" runs the "+
			"ordered gate checks (blocking alerts always win) and, if they pass, completes the scope."),
		mcp.WithString("confirmed", mcp.Description("\"true\" to run the gate and complete. Omit for the impact-report phase.")),
		mcp.WithString("force", mcp.Description("\"true\" to override non-blocking-alert gate failures.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func finishHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	in := project.FinishInput{
		Confirmed: strings.EqualFold(req.GetString("confirmed", ""), "true"),
		Force:     strings.EqualFold(req.GetString("force", ""), "true"),
	}
	result := project.Finish(st, in)

	if !in.Confirmed {
		if len(result.ImpactHints) == 0 {
			return "no impact hints. Call finish(confirmed=\"true\") to complete.", true, nil
		}
		var b strings.Builder
		b.WriteString("IMPACT_REPORT:\n")
		for _, h := range result.ImpactHints {
			fmt.Fprintf(&b, "[%s] %s\n  files: %s\n", h.Pattern, h.Message, strings.Join(h.Files, ", "))
		}
		b.WriteString("\nCall finish(confirmed=\"true\") to complete.")
		return b.String(), true, nil
	}

	if result.Refused {
		return result.Reason, false, nil
	}
	return "✓ scope complete", true, nil
}
