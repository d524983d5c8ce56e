package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kodestack/chainguard/internal/history"
	"github.com/kodestack/chainguard/internal/project"
)

func recallDefinition() mcp.Tool {
	return mcp.NewTool("recall",
		mcp.WithDescription("Search the project's error index for past errors similar to a query, ranked by token overlap."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Error message or description to match against.")),
		mcp.WithString("limit", mcp.Description("Max results. Defaults to 5.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func recallHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	query := req.GetString("query", "")
	if query == "" {
		return "", false, fmt.Errorf("'query' is required")
	}
	limit := 5
	if v := req.GetString("limit", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	entries, err := deps.errorIndex(st.ProjectID).Recall(query, limit)
	if err != nil {
		return "", false, err
	}
	if len(entries) == 0 {
		return "no similar errors recorded", false, nil
	}
	var b strings.Builder
	for _, e := range entries {
		res := e.Resolution
		if res == "" {
			res = "(unresolved)"
		}
		fmt.Fprintf(&b, "%s (%s): %s -> %s\n", e.FilePattern, e.ErrorType, e.ErrorMsg, res)
	}
	return b.String(), false, nil
}

func historyDefinition() mcp.Tool {
	return mcp.NewTool("history",
		mcp.WithDescription("Show the most recent tracked-file history entries for this project."),
		mcp.WithString("limit", mcp.Description("Max entries. Defaults to 20.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func historyHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	limit := 20
	if v := req.GetString("limit", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	entries, err := deps.historyLog(st.ProjectID).Tail(limit)
	if err != nil {
		return "", false, err
	}
	if len(entries) == 0 {
		return "no history recorded yet", false, nil
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s %s %s [%s]\n", e.TS.Format(time.RFC3339), e.Action, e.File, e.Validation)
	}
	return b.String(), false, nil
}

func learnDefinition() mcp.Tool {
	return mcp.NewTool("learn",
		mcp.WithDescription("Record how a past error was resolved, so recall/track's similar-error lookup can surface it next time."),
		mcp.WithString("file_pattern", mcp.Required(), mcp.Description("Normalized file pattern, e.g. \"*Controller.php\".")),
		mcp.WithString("error_type", mcp.Required(), mcp.Description("Validator/language tag the error came from.")),
		mcp.WithString("error_msg", mcp.Required(), mcp.Description("The error message text.")),
		mcp.WithString("resolution", mcp.Required(), mcp.Description("How it was fixed.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func learnHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	filePattern := req.GetString("file_pattern", "")
	errorType := req.GetString("error_type", "")
	errorMsg := req.GetString("error_msg", "")
	resolution := req.GetString("resolution", "")
	if filePattern == "" || errorType == "" || errorMsg == "" || resolution == "" {
		return "", false, fmt.Errorf("'file_pattern', 'error_type', 'error_msg', and 'resolution' are all required")
	}
	scopeDesc := ""
	if st.Scope != nil {
		scopeDesc = st.Scope.Description
	}
	err := deps.errorIndex(st.ProjectID).Add(history.ErrorEntry{
		TS: time.Now(), FilePattern: filePattern, ErrorType: errorType,
		ErrorMsg: errorMsg, ScopeDesc: scopeDesc, ProjectID: st.ProjectID, Resolution: resolution,
	})
	if err != nil {
		return "", false, err
	}
	return "✓ learned resolution", false, nil
}
