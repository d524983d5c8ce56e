package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kodestack/chainguard/internal/project"
	"github.com/kodestack/chainguard/internal/testrunner"
)

func testConfigDefinition() mcp.Tool {
	return mcp.NewTool("test_config",
		mcp.WithDescription("Declare the test command run_tests should invoke for this scope."),
		mcp.WithString("command", mcp.Required(), mcp.Description("The test runner executable, e.g. \"npx\" or \"php\".")),
		mcp.WithString("args", mcp.Description("Comma- or newline-separated argument list, e.g. \"jest,--ci\".")),
		mcp.WithString("timeout_seconds", mcp.Description("Per-run timeout. Defaults to 120.")),
		mcp.WithString("working_dir", mcp.Description("Directory to run the command in. Defaults to the project root.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func testConfigHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	command := req.GetString("command", "")
	if command == "" {
		return "", false, fmt.Errorf("'command' is required")
	}
	timeout := 120
	if v := req.GetString("timeout_seconds", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			timeout = n
		}
	}
	st.TestConfig = &project.TestConfig{
		Command:    command,
		Args:       splitList(req.GetString("args", "")),
		Timeout:    timeout,
		WorkingDir: req.GetString("working_dir", ""),
	}
	return fmt.Sprintf("✓ test_config: %s %s (timeout=%ds)", command, strings.Join(st.TestConfig.Args, " "), timeout), true, nil
}

func runTestsDefinition() mcp.Tool {
	return mcp.NewTool("run_tests",
		mcp.WithDescription("Run the configured test command, parsing framework output for pass/fail counts."),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func runTestsHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	if st.TestConfig == nil {
		return "", false, fmt.Errorf("no test_config declared for this scope — call test_config() first")
	}
	cfg := testrunner.Config{
		Command:    st.TestConfig.Command,
		Args:       st.TestConfig.Args,
		Timeout:    time.Duration(st.TestConfig.Timeout) * time.Second,
		WorkingDir: st.TestConfig.WorkingDir,
	}
	if cfg.WorkingDir == "" {
		cfg.WorkingDir = st.ProjectPath
	}

	res := testrunner.Run(ctx, cfg)

	if res.Success {
		st.TestsPassed++
	} else {
		st.TestsFailed++
	}
	st.TestResults = &project.TestResult{
		Success: res.Success, Passed: res.Passed, Failed: res.Failed, Total: res.Total,
		DurationMS: res.Duration.Milliseconds(), Framework: res.Framework, Output: res.Output,
		ErrorLines: res.ErrorLines, ExitCode: res.ExitCode, Timestamp: time.Now(),
	}

	status := "PASS"
	if !res.Success {
		status = "FAIL"
	}
	summary := fmt.Sprintf("%s (%s): %d passed, %d failed, %d total in %dms", status, res.Framework, res.Passed, res.Failed, res.Total, res.Duration.Milliseconds())
	if len(res.ErrorLines) > 0 {
		summary += "\n" + strings.Join(res.ErrorLines, "\n")
	}
	return summary, true, nil
}

func testStatusDefinition() mcp.Tool {
	return mcp.NewTool("test_status",
		mcp.WithDescription("Report the most recent run_tests result for this scope."),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func testStatusHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	if st.TestResults == nil {
		return "no tests run yet for this scope", false, nil
	}
	r := st.TestResults
	status := "PASS"
	if !r.Success {
		status = "FAIL"
	}
	return fmt.Sprintf("%s (%s) at %s: %d passed, %d failed, %d total",
		status, r.Framework, r.Timestamp.Format(time.RFC3339), r.Passed, r.Failed, r.Total), false, nil
}
