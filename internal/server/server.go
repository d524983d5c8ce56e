// Package server wires all MCP components and creates the server instance.
//
// This is the composition root (DIP): it creates concrete implementations
// and injects them into the tools/prompts/resources that depend on
// abstractions. No business logic lives here — only wiring.
package server

import (
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/server"

	"github.com/kodestack/chainguard/internal/project"
	"github.com/kodestack/chainguard/internal/prompts"
	"github.com/kodestack/chainguard/internal/resources"
	"github.com/kodestack/chainguard/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts, and
// resources registered. This is the single place where all dependencies
// are resolved.
//
// The returned cleanup function flushes any pending state and must be
// called on shutdown (typically via defer).
func New() (*server.MCPServer, func(), error) {
	// --- Create shared dependencies ---

	store, err := project.NewStore()
	if err != nil {
		return nil, noop, fmt.Errorf("creating project store: %w", err)
	}
	mgr := project.NewManager(store)
	deps := tools.NewDeps(mgr, store)

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"chainguard",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	tools.RegisterAll(s, deps)

	// --- Register prompts ---

	startPrompt := prompts.NewStartPrompt()
	s.AddPrompt(startPrompt.Definition(), startPrompt.Handle)

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(store)
	s.AddResource(resourceHandler.StatusResource(), resourceHandler.HandleStatus)

	return s, func() {
		if err := mgr.Flush(); err != nil {
			log.Printf("WARNING: flushing pending writes: %v", err)
		}
	}, nil
}

// noop is a no-op cleanup function used when server construction fails
// before a manager exists to flush.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use chainguard effectively.
func serverInstructions() string {
	return `You have access to chainguard, an enforcement layer that governs how you
touch this workstation.

## The rule set

1. Before editing or creating any file, call set_scope with a description,
   a mode (programming|content|devops|research|generic), and whatever
   modules/acceptance_criteria apply. No file-mutating tool works until a
   scope exists — you'll get SCOPE_BLOCKED otherwise.
2. Echo ctx="🔗" on every subsequent tool call. Omit it and the response is
   prefixed with a CONTEXT_REFRESH reminder of these rules.
3. Call track (or track_batch) after every file you edit or create. It
   flags files outside the scope's declared modules, detects schema-
   affecting changes, and runs a syntax check.
4. Call finish when you believe the task is done. The first call (no
   confirmed) returns an impact report of follow-ups your change may imply.
   Call it again with confirmed=true to actually close the scope — this is
   refused if acceptance criteria are unmet, required checks haven't run,
   or a blocking alert is still open. force=true overrides every refusal
   except an open blocking alert.

## Mode-specific tools

- programming/devops: validate, run_tests, test_config, test_status,
  db_connect/db_schema/db_table/db_disconnect/db_forget, test_endpoint/
  login/set_base_url/clear_session, run_checklist/check_criteria,
  log_command, checkpoint, health_check.
- content: word_count, track_chapter.
- research: add_source, index_fact, sources, facts.
- Any mode: recall, history, learn (cross-session error/lesson recall),
  analyze (impact hints without attempting finish), status/context,
  projects/config.

## Kanban

kanban_init creates this project's board (once); kanban/kanban_show for
overview; kanban_add/kanban_move/kanban_detail/kanban_update/kanban_delete/
kanban_archive/kanban_history to manage cards. These are always allowed,
scope or not.`
}
