package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kodestack/chainguard/internal/impact"
	"github.com/kodestack/chainguard/internal/project"
)

func analyzeDefinition() mcp.Tool {
	return mcp.NewTool("analyze",
		mcp.WithDescription("Run the impact analyzer over the files changed so far in this scope, without attempting finish."),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func analyzeHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	hints := impact.Analyze(st.ChangedFiles)
	if len(hints) == 0 {
		return "no impact hints for the files changed so far", false, nil
	}
	var b strings.Builder
	for _, h := range hints {
		fmt.Fprintf(&b, "[%s] %s\n  files: %s\n", h.Pattern, h.Message, strings.Join(h.Files, ", "))
	}
	return b.String(), false, nil
}
