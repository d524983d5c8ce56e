package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kodestack/chainguard/internal/project"
)

func addSourceDefinition() mcp.Tool {
	return mcp.NewTool("add_source",
		mcp.WithDescription("Record a source consulted during research mode."),
		mcp.WithString("source", mcp.Required(), mcp.Description("URL, citation, or reference description.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func addSourceHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	source := req.GetString("source", "")
	if source == "" {
		return "", false, fmt.Errorf("'source' is required")
	}
	st.Sources = append(st.Sources, source)
	return fmt.Sprintf("✓ source recorded (%d total)", len(st.Sources)), true, nil
}

func indexFactDefinition() mcp.Tool {
	return mcp.NewTool("index_fact",
		mcp.WithDescription("Record a fact gathered during research mode."),
		mcp.WithString("fact", mcp.Required(), mcp.Description("The fact, with enough context to stand alone.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func indexFactHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	fact := req.GetString("fact", "")
	if fact == "" {
		return "", false, fmt.Errorf("'fact' is required")
	}
	st.Facts = append(st.Facts, fact)
	return fmt.Sprintf("✓ fact indexed (%d total)", len(st.Facts)), true, nil
}

func sourcesDefinition() mcp.Tool {
	return mcp.NewTool("sources",
		mcp.WithDescription("List sources recorded for this scope."),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func sourcesHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	if len(st.Sources) == 0 {
		return "no sources recorded", false, nil
	}
	return strings.Join(st.Sources, "\n"), false, nil
}

func factsDefinition() mcp.Tool {
	return mcp.NewTool("facts",
		mcp.WithDescription("List facts indexed for this scope."),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func factsHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	if len(st.Facts) == 0 {
		return "no facts indexed", false, nil
	}
	return strings.Join(st.Facts, "\n"), false, nil
}
