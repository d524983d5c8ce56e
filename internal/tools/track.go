package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kodestack/chainguard/internal/history"
	"github.com/kodestack/chainguard/internal/project"
)

func trackDefinition() mcp.Tool {
	return mcp.NewTool("track",
		mcp.WithDescription("Record a file mutation, triggering the tracking/auto-validation cascade: "+
			"scope membership, schema-change detection, syntax validation, and similar-error recall."),
		mcp.WithString("file", mcp.Required(), mcp.Description("Path of the file that was changed.")),
		mcp.WithString("action", mcp.Description("edit|create|delete. Defaults to edit.")),
		mcp.WithString("skip_validation", mcp.Description("Set to \"true\" to skip the syntax check for this call.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func trackHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	file := req.GetString("file", "")
	if file == "" {
		return "", false, fmt.Errorf("'file' is required")
	}
	action := history.Action(req.GetString("action", string(history.ActionEdit)))
	skip := strings.EqualFold(req.GetString("skip_validation", ""), "true")

	in := project.TrackInput{File: file, Action: action, SkipValidation: skip}
	out, err := project.Track(ctx, st, st.ProjectPath, in, deps.Validator, deps.historyLog(st.ProjectID), deps.errorIndex(st.ProjectID))
	if err != nil {
		return "", false, err
	}

	if len(out.Messages) == 0 && len(out.SimilarErrors) == 0 {
		return "", false, nil // silence on success (§4.4 step 6)
	}

	var b strings.Builder
	for _, m := range out.Messages {
		b.WriteString(m)
		b.WriteByte('\n')
	}
	if len(out.SimilarErrors) > 0 {
		b.WriteString("SIMILAR_ERRORS_SEEN_BEFORE:\n")
		for _, e := range out.SimilarErrors {
			b.WriteString(fmt.Sprintf("- %s (%s): %s -> %s\n", e.FilePattern, e.ErrorType, e.ErrorMsg, e.Resolution))
		}
	}
	return b.String(), false, nil
}

// trackBatchDefinition groups repeated track calls for an agent that
// changed several files in one turn; each line is "file|action".
func trackBatchDefinition() mcp.Tool {
	return mcp.NewTool("track_batch",
		mcp.WithDescription("Track several files in one call. One \"file\" or \"file|action\" per line."),
		mcp.WithString("files", mcp.Required(), mcp.Description("Newline-separated \"file\" or \"file|action\" entries.")),
		mcp.WithString("skip_validation", mcp.Description("Set to \"true\" to skip syntax checks for this batch.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func trackBatchHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	lines := splitList(req.GetString("files", ""))
	if len(lines) == 0 {
		return "", false, fmt.Errorf("'files' is required")
	}
	skip := strings.EqualFold(req.GetString("skip_validation", ""), "true")

	var b strings.Builder
	for _, line := range lines {
		file := line
		action := history.ActionEdit
		if idx := strings.LastIndex(line, "|"); idx >= 0 {
			file = line[:idx]
			action = history.Action(line[idx+1:])
		}
		in := project.TrackInput{File: file, Action: action, SkipValidation: skip}
		out, err := project.Track(ctx, st, st.ProjectPath, in, deps.Validator, deps.historyLog(st.ProjectID), deps.errorIndex(st.ProjectID))
		if err != nil {
			b.WriteString(fmt.Sprintf("%s: error: %v\n", file, err))
			continue
		}
		if len(out.Messages) == 0 {
			continue
		}
		b.WriteString(file + ":\n")
		for _, m := range out.Messages {
			b.WriteString("  " + m + "\n")
		}
	}
	return b.String(), false, nil
}
