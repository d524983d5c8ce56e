// Package resources implements MCP resource handlers for chainguard.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (chainguard://...) following MCP
// conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kodestack/chainguard/internal/project"
)

// Handler manages chainguard's resource endpoints.
type Handler struct {
	store *project.Store
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(store *project.Store) *Handler {
	return &Handler{store: store}
}

// StatusResource returns the MCP resource definition for the current
// project's enforcement snapshot — the same minimal document the
// standalone hook binary reads independently of the server process.
func (h *Handler) StatusResource() mcp.Resource {
	return mcp.NewResource(
		"chainguard://project/status",
		"Chainguard Project Status",
		mcp.WithResourceDescription("Current project's enforcement snapshot: scope presence, mode, schema/HTTP staleness, blocking alerts"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleStatus returns the current project's enforcement snapshot as JSON.
func (h *Handler) HandleStatus(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	root, err := findResourceRoot()
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	id, _, err := project.Resolve(root)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	snap, err := h.store.ReadSnapshot(id)
	if err != nil {
		return errorResource(req.Params.URI, "no snapshot recorded yet for this project: "+err.Error()), nil
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling snapshot: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
