package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kodestack/chainguard/internal/config"
	"github.com/kodestack/chainguard/internal/project"
)

func projectsDefinition() mcp.Tool {
	return mcp.NewTool("projects",
		mcp.WithDescription("List every project chainguard has persisted state for."),
	)
}

func projectsHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	ids, err := deps.Store.List()
	if err != nil {
		return "", false, err
	}
	if len(ids) == 0 {
		return "no projects recorded yet", false, nil
	}
	var b strings.Builder
	for _, id := range ids {
		marker := ""
		if id == st.ProjectID {
			marker = " (current)"
		}
		fmt.Fprintf(&b, "%s%s\n", id, marker)
	}
	return b.String(), false, nil
}

func configDefinition() mcp.Tool {
	return mcp.NewTool("config",
		mcp.WithDescription("Report the active chainguard.yaml overrides for this project, if any."),
	)
}

func configHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	overrides, err := config.LoadOverrides(st.ProjectPath)
	if err != nil {
		return "", false, err
	}
	var b strings.Builder
	b.WriteString("chainguard.yaml overrides:\n")
	fmt.Fprintf(&b, "  similarity_threshold: %v (default %v)\n", derefFloat(overrides.SimilarityThreshold), config.SimilarityThreshold)
	fmt.Fprintf(&b, "  auto_suggest_max_results: %v (default %v)\n", derefInt(overrides.AutoSuggestMaxResults), config.AutoSuggestMaxResults)
	fmt.Fprintf(&b, "  syntax_validator_timeout_seconds: %v (default %v)\n", derefInt(overrides.SyntaxValidatorTimeout), int(config.SyntaxValidatorTimeout.Seconds()))
	fmt.Fprintf(&b, "  checklist_item_timeout_seconds: %v (default %v)\n", derefInt(overrides.ChecklistItemTimeout), int(config.ChecklistItemTimeout.Seconds()))
	return b.String(), false, nil
}

func derefFloat(p *float64) any {
	if p == nil {
		return "(default)"
	}
	return *p
}

func derefInt(p *int) any {
	if p == nil {
		return "(default)"
	}
	return *p
}
