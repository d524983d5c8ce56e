package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kodestack/chainguard/internal/checklist"
	"github.com/kodestack/chainguard/internal/project"
)

func runChecklistDefinition() mcp.Tool {
	return mcp.NewTool("run_checklist",
		mcp.WithDescription("Run the scope's checklist items (whitelisted commands only) and record pass/fail per item."),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func runChecklistHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	if st.Scope == nil || len(st.Scope.Checklist) == 0 {
		return "no checklist items declared for this scope", false, nil
	}

	items := make([]checklist.Item, len(st.Scope.Checklist))
	for i, ci := range st.Scope.Checklist {
		items[i] = checklist.Item{Name: ci.Item, Check: ci.Check}
	}

	results := deps.Checklist.RunAllAsync(ctx, items)

	var b strings.Builder
	for _, r := range results {
		st.ChecklistResults[r.Item] = r.Passed
		status := "PASS"
		if !r.Passed {
			status = "FAIL: " + r.Error
			if r.Output != "" {
				status += " -- " + r.Output
			}
		}
		fmt.Fprintf(&b, "%s: %s\n", r.Item, status)
	}
	return b.String(), true, nil
}

func checkCriteriaDefinition() mcp.Tool {
	return mcp.NewTool("check_criteria",
		mcp.WithDescription("Mark one or more acceptance criteria as fulfilled or not."),
		mcp.WithString("criterion", mcp.Required(), mcp.Description("The exact acceptance-criterion text to update.")),
		mcp.WithString("fulfilled", mcp.Description("\"true\" or \"false\". Defaults to true.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func checkCriteriaHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	criterion := req.GetString("criterion", "")
	if criterion == "" {
		return "", false, fmt.Errorf("'criterion' is required")
	}
	if _, ok := st.CriteriaStatus[criterion]; !ok {
		return "", false, fmt.Errorf("criterion %q is not part of the current scope", criterion)
	}
	fulfilled := !strings.EqualFold(req.GetString("fulfilled", "true"), "false")
	st.CriteriaStatus[criterion] = fulfilled

	remaining := 0
	for _, ok := range st.CriteriaStatus {
		if !ok {
			remaining++
		}
	}
	return fmt.Sprintf("✓ %s = %v (%d criteria remaining)", criterion, fulfilled, remaining), false, nil
}
