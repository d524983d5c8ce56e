package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kodestack/chainguard/internal/project"
)

func validateDefinition() mcp.Tool {
	return mcp.NewTool("validate",
		mcp.WithDescription("Run the syntax validator against a file on demand, outside the track cascade."),
		mcp.WithString("file", mcp.Required(), mcp.Description("Path to check.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func validateHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	file := req.GetString("file", "")
	if file == "" {
		return "", false, fmt.Errorf("'file' is required")
	}
	res := deps.Validator.Check(ctx, file)
	if res.Valid {
		now := time.Now()
		st.LastValidation = &now
		st.ValidationsPassed++
		return fmt.Sprintf("PASS (%s)", res.Checked), true, nil
	}
	st.ValidationsFailed++
	return fmt.Sprintf("FAIL (%s): %s", res.Checked, strings.Join(res.Errors, "; ")), true, nil
}

func alertDefinition() mcp.Tool {
	return mcp.NewTool("alert",
		mcp.WithDescription("Raise an operator/agent-visible alert. A blocking, unacknowledged alert halts finish unconditionally."),
		mcp.WithString("message", mcp.Required(), mcp.Description("The alert text.")),
		mcp.WithString("severity", mcp.Description("info|warn|blocking. Defaults to warn.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

var validSeverities = map[project.Severity]bool{
	project.SeverityInfo: true, project.SeverityWarn: true, project.SeverityBlocking: true,
}

func alertHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	message := req.GetString("message", "")
	if message == "" {
		return "", false, fmt.Errorf("'message' is required")
	}
	severity := project.Severity(req.GetString("severity", string(project.SeverityWarn)))
	if !validSeverities[severity] {
		severity = project.SeverityWarn
	}
	st.Alerts = append(st.Alerts, project.Alert{
		Message: message, Severity: severity, CreatedAt: time.Now(),
	})
	return fmt.Sprintf("✓ alert raised (%s): %s", severity, message), true, nil
}

func clearAlertsDefinition() mcp.Tool {
	return mcp.NewTool("clear_alerts",
		mcp.WithDescription("Acknowledge alerts. With no filter, acknowledges every open alert."),
		mcp.WithString("message_contains", mcp.Description("Only acknowledge alerts whose message contains this substring.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func clearAlertsHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	filter := req.GetString("message_contains", "")
	cleared := 0
	for i := range st.Alerts {
		if st.Alerts[i].Acknowledged {
			continue
		}
		if filter != "" && !strings.Contains(st.Alerts[i].Message, filter) {
			continue
		}
		st.Alerts[i].Acknowledged = true
		cleared++
	}
	return fmt.Sprintf("✓ acknowledged %d alert(s)", cleared), true, nil
}
