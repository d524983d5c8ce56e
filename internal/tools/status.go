package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kodestack/chainguard/internal/project"
)

func statusDefinition() mcp.Tool {
	return mcp.NewTool("status",
		mcp.WithDescription("Report the project's current counters, scope, phase, and open alerts."),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func statusHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "project: %s (%s)\n", st.ProjectName, st.ProjectID)
	fmt.Fprintf(&b, "phase: %s  mode: %s\n", st.Phase, st.Mode)
	if st.Scope != nil {
		fmt.Fprintf(&b, "scope: %s\n", st.Scope.Description)
	} else {
		b.WriteString("scope: (none)\n")
	}
	fmt.Fprintf(&b, "files_changed: %d  files_since_validation: %d\n", st.FilesChanged, st.FilesSinceValidation)
	fmt.Fprintf(&b, "validations: %d passed / %d failed\n", st.ValidationsPassed, st.ValidationsFailed)
	fmt.Fprintf(&b, "tests: %d passed / %d failed\n", st.TestsPassed, st.TestsFailed)
	fmt.Fprintf(&b, "http_tests_performed: %d\n", st.HTTPTestsPerformed)
	if st.DBSchemaCheckedAt != nil {
		fmt.Fprintf(&b, "db_schema_checked_at: %s\n", st.DBSchemaCheckedAt.Format("2006-01-02T15:04:05Z07:00"))
	} else {
		b.WriteString("db_schema_checked_at: (stale or never)\n")
	}
	if len(st.OutOfScopeFiles) > 0 {
		fmt.Fprintf(&b, "out_of_scope_files: %s\n", strings.Join(st.OutOfScopeFiles, ", "))
	}
	blocking := 0
	for _, a := range st.Alerts {
		if a.Severity == project.SeverityBlocking && !a.Acknowledged {
			blocking++
		}
	}
	fmt.Fprintf(&b, "alerts: %d (%d blocking, unacknowledged)\n", len(st.Alerts), blocking)
	return b.String(), false, nil
}

func contextDefinition() mcp.Tool {
	return mcp.NewTool("context",
		mcp.WithDescription("Re-emit the mode preamble and recent actions, for an agent re-establishing context mid-session."),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func contextHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	var b strings.Builder
	b.WriteString(project.Preamble(st.Mode))
	b.WriteByte('\n')
	if len(st.RecentActions) > 0 {
		b.WriteString("\nrecent actions:\n")
		for _, a := range st.RecentActions {
			b.WriteString("  " + a + "\n")
		}
	}
	return b.String(), false, nil
}

func setPhaseDefinition() mcp.Tool {
	return mcp.NewTool("set_phase",
		mcp.WithDescription("Set the project's pipeline phase: planning|implementation|testing|review|done."),
		mcp.WithString("phase", mcp.Required(), mcp.Description("The new phase value.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

var validPhases = map[project.Phase]bool{
	project.PhasePlanning: true, project.PhaseImplementation: true,
	project.PhaseTesting: true, project.PhaseReview: true, project.PhaseDone: true,
}

func setPhaseHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	phase := project.Phase(req.GetString("phase", ""))
	if !validPhases[phase] {
		return "", false, fmt.Errorf("invalid phase %q", phase)
	}
	st.Phase = phase
	return fmt.Sprintf("✓ phase -> %s", phase), true, nil
}
