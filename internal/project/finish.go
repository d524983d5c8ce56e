package project

import (
	"fmt"
	"strings"
	"time"

	"github.com/kodestack/chainguard/internal/config"
	"github.com/kodestack/chainguard/internal/impact"
)

// FinishInput is the finish tool's argument pair.
type FinishInput struct {
	Confirmed bool
	Force     bool
}

// FinishResult is what the tool handler renders back to the agent.
type FinishResult struct {
	ImpactHints []impact.Hint
	Refused     bool
	Reason      string
	Done        bool
}

// gateCheck is one named, ordered completion-gate condition (§4.5). It
// returns ok=true when the condition is satisfied (does not block).
type gateCheck struct {
	name  string
	check func(st *State, force bool) (ok bool, reason string)
}

var gateChecks = []gateCheck{
	{
		name: "blocking_alerts",
		check: func(st *State, force bool) (bool, string) {
			for _, a := range st.Alerts {
				if a.Severity == SeverityBlocking && !a.Acknowledged {
					return false, "BLOCKED: unacknowledged blocking alert — " + a.Message
				}
			}
			return true, ""
		},
	},
	{
		name: "http_tests",
		check: func(st *State, force bool) (bool, string) {
			features := FeaturesFor(st.Mode)
			if !features.HTTPEnforcement {
				return true, ""
			}
			webRelevant := false
			for _, f := range st.ChangedFiles {
				lower := strings.ToLower(f)
				if strings.Contains(lower, "controller") || strings.Contains(lower, "route") ||
					strings.Contains(lower, "api") || strings.Contains(lower, "view") {
					webRelevant = true
					break
				}
			}
			if webRelevant && st.HTTPTestsPerformed == 0 {
				if force {
					return true, ""
				}
				return false, "BLOCKED: web-relevant files changed but no test_endpoint() was run"
			}
			return true, ""
		},
	},
	{
		name: "checklist",
		check: func(st *State, force bool) (bool, string) {
			for item, passed := range st.ChecklistResults {
				if !passed {
					if force {
						return true, ""
					}
					return false, "BLOCKED: checklist item failed — " + item
				}
			}
			return true, ""
		},
	},
	{
		name: "acceptance_criteria",
		check: func(st *State, force bool) (bool, string) {
			for criterion, fulfilled := range st.CriteriaStatus {
				if !fulfilled {
					if force {
						return true, ""
					}
					return false, "BLOCKED: acceptance criterion unfulfilled — " + criterion
				}
			}
			return true, ""
		},
	},
	{
		name: "unresolved_validation_failure",
		check: func(st *State, force bool) (bool, string) {
			if st.ValidationsFailed > 0 && st.LastValidation == nil {
				if force {
					return true, ""
				}
				return false, "BLOCKED: validations_failed > 0 without a subsequent PASS"
			}
			return true, ""
		},
	},
}

// Finish implements the two-phase completion gate (§4.5).
func Finish(st *State, in FinishInput) FinishResult {
	if !in.Confirmed {
		hints := impact.Analyze(st.ChangedFiles)
		st.ImpactCheckPending = true
		return FinishResult{ImpactHints: hints}
	}

	for _, g := range gateChecks {
		ok, reason := g.check(st, in.Force)
		if !ok {
			return FinishResult{Refused: true, Reason: reason}
		}
	}

	st.Phase = PhaseDone
	st.Scope = nil
	st.ImpactCheckPending = false
	st.FilesChanged = 0
	st.FilesSinceValidation = 0
	st.ValidationsPassed = 0
	st.ValidationsFailed = 0
	st.HTTPTestsPerformed = 0
	st.CriteriaStatus = map[string]bool{}
	st.ChecklistResults = map[string]bool{}
	st.OutOfScopeFiles = nil
	st.ChangedFiles = nil
	st.HTTPCredentials = nil
	now := time.Now()
	st.LastActivity = &now
	recordAction(st, "finish: phase=done")

	return FinishResult{Done: true}
}

// SetScope replaces (or clears, if def is nil) the project's scope,
// resetting mode-immutable, scope-local state (I6: a new set_scope call
// resets state).
func SetScope(st *State, def *ScopeDefinition, mode TaskMode, truncated bool) string {
	st.Scope = def
	st.Mode = mode
	st.HTTPTestsPerformed = 0 // per-scope, resets on set_scope (§9 decision c)
	st.CriteriaStatus = map[string]bool{}
	if def != nil {
		for _, c := range def.AcceptanceCriteria {
			st.CriteriaStatus[c] = false
		}
	}
	st.ChecklistResults = map[string]bool{}
	st.OutOfScopeFiles = nil
	st.ChangedFiles = nil
	st.ImpactCheckPending = false
	now := time.Now()
	st.LastActivity = &now

	preamble := Preamble(mode)
	if truncated {
		preamble = fmt.Sprintf("(description truncated to %d chars)\n\n", config.ScopeDescriptionMaxLen) + preamble
	}
	return preamble
}
