package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kodestack/chainguard/internal/httpsession"
	"github.com/kodestack/chainguard/internal/project"
)

func setBaseURLDefinition() mcp.Tool {
	return mcp.NewTool("set_base_url",
		mcp.WithDescription("Set the base URL the HTTP session tools probe against for this project."),
		mcp.WithString("base_url", mcp.Required(), mcp.Description("e.g. http://localhost:8000")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func setBaseURLHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	base := req.GetString("base_url", "")
	if base == "" {
		return "", false, fmt.Errorf("'base_url' is required")
	}
	deps.HTTP.SetBaseURL(st.ProjectID, base)
	st.HTTPBaseURL = base
	return fmt.Sprintf("✓ base_url -> %s", base), true, nil
}

func loginDefinition() mcp.Tool {
	return mcp.NewTool("login",
		mcp.WithDescription("Log in against login_path, extracting a CSRF token if the login form carries one. "+
			"Credentials are held only for the lifetime of the current scope."),
		mcp.WithString("login_path", mcp.Required(), mcp.Description("Path to the login page/endpoint, relative to base_url.")),
		mcp.WithString("username", mcp.Required(), mcp.Description("Login username.")),
		mcp.WithString("password", mcp.Required(), mcp.Description("Login password.")),
		mcp.WithString("username_field", mcp.Description("Form field name for the username. Defaults to \"username\".")),
		mcp.WithString("password_field", mcp.Description("Form field name for the password. Defaults to \"password\".")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func loginHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	loginPath := req.GetString("login_path", "")
	username := req.GetString("username", "")
	password := req.GetString("password", "")
	if loginPath == "" || username == "" || password == "" {
		return "", false, fmt.Errorf("'login_path', 'username', and 'password' are all required")
	}
	creds := httpsession.Credentials{
		Username:      username,
		Password:      password,
		UsernameField: req.GetString("username_field", ""),
		PasswordField: req.GetString("password_field", ""),
	}
	if err := deps.HTTP.Login(st.ProjectID, loginPath, creds); err != nil {
		return "", false, err
	}
	st.HTTPCredentials = &project.HTTPCredentials{Username: username, Password: password}
	return "✓ logged in", true, nil
}

func testEndpointDefinition() mcp.Tool {
	return mcp.NewTool("test_endpoint",
		mcp.WithDescription("Probe an endpoint with the current session, classifying whether it looks like it requires "+
			"authentication. Satisfies the finish gate's web-relevant-change requirement."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to request, relative to base_url.")),
		mcp.WithString("method", mcp.Description("HTTP method. Defaults to GET.")),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func testEndpointHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	path := req.GetString("path", "")
	if path == "" {
		return "", false, fmt.Errorf("'path' is required")
	}
	method := req.GetString("method", "GET")

	probe, err := deps.HTTP.TestEndpoint(st.ProjectID, method, path)
	if err != nil {
		return "", false, err
	}
	if probe.AuthNeeded && st.HTTPCredentials != nil {
		if reErr := deps.HTTP.EnsureSession(st.ProjectID, path); reErr == nil {
			probe, err = deps.HTTP.TestEndpoint(st.ProjectID, method, path)
			if err != nil {
				return "", false, err
			}
		}
	}

	st.HTTPTestsPerformed++
	now := time.Now()
	st.LastActivity = &now
	return fmt.Sprintf("%s %s -> %d (auth_needed=%v)", method, path, probe.StatusCode, probe.AuthNeeded), true, nil
}

func clearSessionDefinition() mcp.Tool {
	return mcp.NewTool("clear_session",
		mcp.WithDescription("Drop the cached HTTP session and stored credentials for this project."),
		mcp.WithString("ctx", mcp.Description("Context marker sentinel.")),
	)
}

func clearSessionHandle(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (string, bool, error) {
	deps.HTTP.ClearSession(st.ProjectID)
	st.HTTPCredentials = nil
	return "✓ session cleared", true, nil
}
