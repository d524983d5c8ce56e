// Package tools implements the MCP tool handlers for chainguard's
// enforcement surface: the dispatcher (registry, scope gate,
// context-marker preamble, project-lock wrapping) plus one file per
// concern group, grounded on the teacher's internal/tools per-file SRP
// layout but generalized from per-struct Definition()/Handle() pairs to
// free functions sharing one *Deps, since every chainguard tool needs
// the same project-lock/scope-gate wrapping the teacher's SDD tools
// didn't.
package tools

import (
	"context"
	"os"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kodestack/chainguard/internal/checklist"
	"github.com/kodestack/chainguard/internal/config"
	"github.com/kodestack/chainguard/internal/dbinspect"
	"github.com/kodestack/chainguard/internal/history"
	"github.com/kodestack/chainguard/internal/httpsession"
	"github.com/kodestack/chainguard/internal/kanban"
	"github.com/kodestack/chainguard/internal/project"
	"github.com/kodestack/chainguard/internal/validate"
)

// alwaysAllowed is the scope-gate exemption set (§4.2): these tools run
// even with no active scope.
var alwaysAllowed = map[string]bool{
	"set_scope": true, "projects": true, "config": true,
	"kanban_init": true, "kanban": true, "kanban_show": true,
	"kanban_add": true, "kanban_move": true, "kanban_detail": true,
	"kanban_update": true, "kanban_delete": true, "kanban_archive": true,
	"kanban_history": true,
}

// dbRegistry owns at most one active connection and schema cache per
// project (§3 ownership rule), guarded by a mutex since handlers for
// different projects run concurrently (§5).
type dbRegistry struct {
	mu    sync.Mutex
	conns map[string]*dbinspect.Inspector
}

func newDBRegistry() *dbRegistry {
	return &dbRegistry{conns: map[string]*dbinspect.Inspector{}}
}

func (r *dbRegistry) connect(projectID string, cfg dbinspect.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.conns[projectID]; ok {
		_ = old.Disconnect()
	}
	insp, err := dbinspect.Connect(cfg)
	if err != nil {
		return err
	}
	r.conns[projectID] = insp
	return nil
}

func (r *dbRegistry) get(projectID string) (*dbinspect.Inspector, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	insp, ok := r.conns[projectID]
	return insp, ok
}

func (r *dbRegistry) disconnect(projectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	insp, ok := r.conns[projectID]
	if !ok {
		return nil
	}
	delete(r.conns, projectID)
	return insp.Disconnect()
}

// Deps are the concrete collaborators every tool handler is wired
// against — the composition root (internal/server) builds exactly one
// of these.
type Deps struct {
	Manager   *project.Manager
	Store     *project.Store
	Validator *validate.Multiplexer
	Checklist *checklist.Runner
	HTTP      *httpsession.Manager
	DB        *dbRegistry
}

// NewDeps wires a Deps around the given manager and store.
func NewDeps(mgr *project.Manager, store *project.Store) *Deps {
	return &Deps{
		Manager:   mgr,
		Store:     store,
		Validator: validate.NewMultiplexer(config.SyntaxValidatorTimeout),
		Checklist: checklist.NewRunner(4),
		HTTP:      httpsession.NewManager(),
		DB:        newDBRegistry(),
	}
}

func (d *Deps) kanbanStore(projectID string) (*kanban.Store, error) {
	dir, err := d.Store.Dir(projectID)
	if err != nil {
		return nil, err
	}
	return kanban.NewStore(dir), nil
}

// historyLog and errorIndex are cheap, stateless wrappers around a
// project's history.jsonl / error_index.json -- constructed per call
// rather than cached, since internal/history itself holds no in-memory
// state beyond the path.
func (d *Deps) historyLog(projectID string) *history.Log {
	return history.NewLog(d.Store.HistoryPath(projectID))
}

func (d *Deps) errorIndex(projectID string) *history.ErrorIndex {
	return history.NewErrorIndex(d.Store.ErrorIndexPath(projectID))
}

// HandlerFunc is one tool's business logic: given the deps and the
// already-locked, already-loaded project state plus the raw request, it
// returns the text to send back and whether the mutation must be
// persisted immediately (bypassing the debounce window) rather than
// merely marked dirty.
type HandlerFunc func(ctx context.Context, deps *Deps, st *project.State, req mcp.CallToolRequest) (text string, immediate bool, err error)

// Register wires one tool's definition and HandlerFunc into s, applying
// the dispatcher's scope gate, context-marker preamble, and per-project
// lock (§4.2). This is the single place those cross-cutting rules are
// implemented; individual tool files only provide Definition+HandlerFunc.
func Register(s *server.MCPServer, deps *Deps, def mcp.Tool, fn HandlerFunc) {
	name := def.Name
	s.AddTool(def, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return dispatch(ctx, deps, name, req, fn)
	})
}

func dispatch(ctx context.Context, deps *Deps, name string, req mcp.CallToolRequest, fn HandlerFunc) (*mcp.CallToolResult, error) {
	workingDir := req.GetString("working_dir", "")
	if workingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return mcp.NewToolResultError("resolving working directory: " + err.Error()), nil
		}
		workingDir = wd
	}

	id, projName, err := project.Resolve(workingDir)
	if err != nil {
		return mcp.NewToolResultError("resolving project: " + err.Error()), nil
	}

	var (
		text      string
		immediate bool
		blocked   bool
	)

	st, err := deps.Manager.WithProject(id, workingDir, func(st *project.State) error {
		if st.ProjectName == "" {
			st.ProjectName = projName
		}
		if !alwaysAllowed[name] && st.Scope == nil {
			blocked = true
			text = config.ScopeBlockedText
			return nil
		}
		t, imm, err := fn(ctx, deps, st, req)
		if err != nil {
			return err
		}
		text, immediate = t, imm
		return nil
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !blocked {
		if immediate {
			if err := deps.Manager.SaveImmediate(st); err != nil {
				return mcp.NewToolResultError("saving project state: " + err.Error()), nil
			}
		} else {
			deps.Manager.MarkDirty(id, st)
		}
	}

	if req.GetString("ctx", "") != config.ContextMarker {
		text = config.ContextRefreshText + text
	}
	return mcp.NewToolResultText(text), nil
}

// RegisterAll wires every chainguard tool's definition/handler pair into
// s via Register. This is the package's single exported entry point for
// the composition root (internal/server) — individual tool files keep
// their Definition/Handle pairs unexported since nothing outside this
// package calls them directly.
func RegisterAll(s *server.MCPServer, deps *Deps) {
	Register(s, deps, setScopeDefinition(), setScopeHandle)
	Register(s, deps, trackDefinition(), trackHandle)
	Register(s, deps, trackBatchDefinition(), trackBatchHandle)
	Register(s, deps, statusDefinition(), statusHandle)
	Register(s, deps, contextDefinition(), contextHandle)
	Register(s, deps, setPhaseDefinition(), setPhaseHandle)
	Register(s, deps, runChecklistDefinition(), runChecklistHandle)
	Register(s, deps, checkCriteriaDefinition(), checkCriteriaHandle)
	Register(s, deps, validateDefinition(), validateHandle)
	Register(s, deps, alertDefinition(), alertHandle)
	Register(s, deps, clearAlertsDefinition(), clearAlertsHandle)
	Register(s, deps, projectsDefinition(), projectsHandle)
	Register(s, deps, configDefinition(), configHandle)
	Register(s, deps, testEndpointDefinition(), testEndpointHandle)
	Register(s, deps, loginDefinition(), loginHandle)
	Register(s, deps, setBaseURLDefinition(), setBaseURLHandle)
	Register(s, deps, clearSessionDefinition(), clearSessionHandle)
	Register(s, deps, analyzeDefinition(), analyzeHandle)
	Register(s, deps, finishDefinition(), finishHandle)
	Register(s, deps, testConfigDefinition(), testConfigHandle)
	Register(s, deps, runTestsDefinition(), runTestsHandle)
	Register(s, deps, testStatusDefinition(), testStatusHandle)
	Register(s, deps, recallDefinition(), recallHandle)
	Register(s, deps, historyDefinition(), historyHandle)
	Register(s, deps, learnDefinition(), learnHandle)
	Register(s, deps, dbConnectDefinition(), dbConnectHandle)
	Register(s, deps, dbSchemaDefinition(), dbSchemaHandle)
	Register(s, deps, dbTableDefinition(), dbTableHandle)
	Register(s, deps, dbDisconnectDefinition(), dbDisconnectHandle)
	Register(s, deps, dbForgetDefinition(), dbForgetHandle)
	Register(s, deps, wordCountDefinition(), wordCountHandle)
	Register(s, deps, trackChapterDefinition(), trackChapterHandle)
	Register(s, deps, logCommandDefinition(), logCommandHandle)
	Register(s, deps, checkpointDefinition(), checkpointHandle)
	Register(s, deps, healthCheckDefinition(), healthCheckHandle)
	Register(s, deps, addSourceDefinition(), addSourceHandle)
	Register(s, deps, indexFactDefinition(), indexFactHandle)
	Register(s, deps, sourcesDefinition(), sourcesHandle)
	Register(s, deps, factsDefinition(), factsHandle)
	Register(s, deps, kanbanInitDefinition(), kanbanInitHandle)
	Register(s, deps, kanbanDefinition(), kanbanHandle)
	Register(s, deps, kanbanShowDefinition(), kanbanShowHandle)
	Register(s, deps, kanbanAddDefinition(), kanbanAddHandle)
	Register(s, deps, kanbanMoveDefinition(), kanbanMoveHandle)
	Register(s, deps, kanbanDetailDefinition(), kanbanDetailHandle)
	Register(s, deps, kanbanUpdateDefinition(), kanbanUpdateHandle)
	Register(s, deps, kanbanDeleteDefinition(), kanbanDeleteHandle)
	Register(s, deps, kanbanArchiveDefinition(), kanbanArchiveHandle)
	Register(s, deps, kanbanHistoryDefinition(), kanbanHistoryHandle)
}
