package tools

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kodestack/chainguard/internal/config"
	"github.com/kodestack/chainguard/internal/project"
)

func logCommandDefinition() mcp.Tool {
	return mcp.NewTool("log_command",
		mcp.WithDescription("Append an infrastructure command to the devops command log, for audit/replay."),
		mcp.WithString("command", mcp.Required(), mcp.Description("The command that was run.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func logCommandHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	command := req.GetString("command", "")
	if command == "" {
		return "", false, fmt.Errorf("'command' is required")
	}
	stamped := time.Now().Format("15:04:05") + " " + command
	st.CommandLog = append(st.CommandLog, stamped)
	if len(st.CommandLog) > config.RecentActionsCap*4 {
		st.CommandLog = st.CommandLog[len(st.CommandLog)-config.RecentActionsCap*4:]
	}
	return "✓ logged", true, nil
}

func checkpointDefinition() mcp.Tool {
	return mcp.NewTool("checkpoint",
		mcp.WithDescription("Record a named checkpoint marking a verified-good infrastructure state."),
		mcp.WithString("label", mcp.Required(), mcp.Description("What this checkpoint represents.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func checkpointHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	label := req.GetString("label", "")
	if label == "" {
		return "", false, fmt.Errorf("'label' is required")
	}
	stamped := time.Now().Format(time.RFC3339) + " " + label
	st.Checkpoints = append(st.Checkpoints, stamped)
	return fmt.Sprintf("✓ checkpoint: %s", label), true, nil
}

func healthCheckDefinition() mcp.Tool {
	return mcp.NewTool("health_check",
		mcp.WithDescription("GET a health endpoint and report its status code, counting toward the devops finish gate's HTTP requirement."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Full URL to request.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func healthCheckHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	target := req.GetString("url", "")
	if target == "" {
		return "", false, fmt.Errorf("'url' is required")
	}

	reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return "", false, err
	}
	client := &http.Client{}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", false, fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	st.HTTPTestsPerformed++
	status := "healthy"
	if resp.StatusCode >= 400 {
		status = "unhealthy"
	}
	return fmt.Sprintf("%s -> %d (%s)", target, resp.StatusCode, status), true, nil
}
