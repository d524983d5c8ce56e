package project

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/kodestack/chainguard/internal/config"
	"github.com/kodestack/chainguard/internal/history"
	"github.com/kodestack/chainguard/internal/validate"
)

// TrackInput is the (file, action, skip_validation) argument triple for
// the track tool.
type TrackInput struct {
	File           string
	Action         history.Action
	SkipValidation bool
}

// TrackOutcome summarizes what the cascade did, so the tool handler can
// render it as text (or nothing, on the happy path — "silence on
// success", §4.4 step 6).
type TrackOutcome struct {
	OutOfScope       bool
	SchemaStale      bool
	ValidationResult *validate.Result
	SimilarErrors    []history.ErrorEntry
	Messages         []string
}

// Track performs the tracking and auto-validation cascade (§4.4) against
// st, mutating it in place. projectRoot is used for path sanitation;
// mx and idx implement the syntax check and similar-error lookup.
func Track(ctx context.Context, st *State, projectRoot string, in TrackInput, mx *validate.Multiplexer, log *history.Log, idx *history.ErrorIndex) (TrackOutcome, error) {
	features := FeaturesFor(st.Mode)
	var out TrackOutcome

	// 1. Path sanitation.
	abs, outOfRoot := sanitizePath(projectRoot, in.File)
	if outOfRoot && features.ScopeEnforcement {
		out.OutOfScope = true
		pushBounded(&st.OutOfScopeFiles, in.File, config.OutOfScopeFilesCap)
		recordAction(st, fmt.Sprintf("%s out of project root", in.File))
	}

	// 2. Schema-change detection.
	if isSchemaFile(in.File) {
		st.DBSchemaCheckedAt = nil
		out.SchemaStale = true
		out.Messages = append(out.Messages, "SCHEMA STALE: "+in.File+" touches the schema — re-run db_schema() before writing schema files again.")
	}

	// 3. Syntax validation.
	validation := "PASS"
	if features.SyntaxValidation && !in.SkipValidation && mx != nil {
		res := mx.Check(ctx, abs)
		out.ValidationResult = &res
		if res.Valid {
			st.ValidationsPassed++
			now := time.Now()
			st.LastValidation = &now
		} else {
			st.ValidationsFailed++
			msg := strings.Join(res.Errors, "; ")
			validation = "FAIL:" + msg

			if idx != nil {
				pattern := history.FilePattern(in.File)
				scopeDesc := ""
				if st.Scope != nil {
					scopeDesc = st.Scope.Description
				}
				_ = idx.Add(history.ErrorEntry{
					TS: time.Now(), FilePattern: pattern, ErrorType: res.Checked,
					ErrorMsg: msg, ScopeDesc: scopeDesc, ProjectID: st.ProjectID,
				})
				similar, err := idx.FindSimilar(msg)
				if err == nil {
					out.SimilarErrors = similar
				}
			}
			out.Messages = append(out.Messages, "SYNTAX_FAIL: "+res.Checked+" "+msg)
		}
	}

	// 4. Scope membership.
	if st.Scope != nil && len(st.Scope.Modules) > 0 && !outOfRoot {
		member := false
		for _, pat := range st.Scope.Modules {
			if ok, _ := doublestar.Match(pat, in.File); ok {
				member = true
				break
			}
		}
		if !member {
			out.OutOfScope = true
			pushBounded(&st.OutOfScopeFiles, in.File, config.OutOfScopeFilesCap)
			recordAction(st, fmt.Sprintf("OOS: %s not in scope modules", in.File))
			out.Messages = append(out.Messages, "OOS: "+in.File+" is outside the declared scope modules.")
		}
	}

	// 5. Counters + history.
	st.FilesChanged++
	st.FilesSinceValidation++
	if features.SyntaxValidation && !in.SkipValidation {
		st.FilesSinceValidation = 0
	}
	pushBounded(&st.ChangedFiles, in.File, config.ChangedFilesCap)
	now := time.Now()
	st.LastActivity = &now
	recordAction(st, fmt.Sprintf("%s %s", in.Action, in.File))

	if log != nil {
		scopeID, scopeDesc := "", ""
		if st.Scope != nil {
			scopeDesc = st.Scope.Description
			scopeID = history.FilePattern(in.File) // scope has no separate ID field; reuse pattern for correlation
		}
		_ = log.Append(history.Entry{
			TS: now, File: in.File, Action: in.Action, Validation: validation,
			ScopeID: scopeID, ScopeDesc: scopeDesc,
		})
	}

	return out, nil
}

// sanitizePath resolves file against projectRoot and reports whether the
// resolved absolute path escapes the root.
func sanitizePath(projectRoot, file string) (abs string, outOfRoot bool) {
	if filepath.IsAbs(file) {
		abs = filepath.Clean(file)
	} else {
		abs = filepath.Clean(filepath.Join(projectRoot, file))
	}
	rel, err := filepath.Rel(projectRoot, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return abs, true
	}
	return abs, false
}

func isSchemaFile(file string) bool {
	lower := strings.ToLower(file)
	for _, pat := range config.SchemaFilePatterns {
		if strings.HasSuffix(lower, pat) || strings.Contains(lower, pat) {
			return true
		}
	}
	return false
}

func pushBounded(slice *[]string, item string, cap int) {
	*slice = append(*slice, item)
	if len(*slice) > cap {
		*slice = (*slice)[len(*slice)-cap:]
	}
}

func recordAction(st *State, action string) {
	ts := time.Now().Format("15:04")
	entry := ts + " " + action
	st.RecentActions = append(st.RecentActions, entry)
	if len(st.RecentActions) > config.RecentActionsCap {
		st.RecentActions = st.RecentActions[len(st.RecentActions)-config.RecentActionsCap:]
	}
}
