// Package config holds chainguard's thresholds, timeouts, and whitelist
// constants. Values here are deliberately plain Go const/var — the same
// convention the rest of the ecosystem pack uses for small, human-tunable
// numbers — plus an optional per-project chainguard.yaml (see Overrides)
// whose values are reported by the config tool but not applied.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultHomeDirName is the directory chainguard stores all project state
// under, relative to $HOME unless CHAINGUARD_HOME overrides it.
const DefaultHomeDirName = ".chainguard"

// HomeEnvVar is the environment variable that overrides the storage root.
const HomeEnvVar = "CHAINGUARD_HOME"

// ContextMarker is the sentinel value the `ctx` tool argument must equal
// to suppress the context-refresh preamble.
const ContextMarker = "🔗"

// ScopeBlockedText is returned verbatim, without invoking the handler,
// when a tool outside the always-allowed set is called with no scope set.
const ScopeBlockedText = "SCOPE_BLOCKED: no active scope. Call set_scope(description, mode) before using this tool."

// ContextRefreshText is prepended to a handler's response whenever the
// call omits the `ctx` sentinel field, re-teaching the agent the rule set.
const ContextRefreshText = "CONTEXT_REFRESH: (1) call set_scope before any file-mutating tool; " +
	"(2) echo ctx=\"🔗\" on every call once you've read this; " +
	"(3) finish requires scope's acceptance criteria fulfilled and no blocking alerts.\n\n"

const (
	// ProjectLRUCap bounds the in-memory ProjectState cache.
	ProjectLRUCap = 20

	// DebounceWindow is how long a project must be quiescent before its
	// dirty state is flushed to disk.
	DebounceWindow = 500 * time.Millisecond

	// ScopeDescriptionMaxLen truncates overlong scope descriptions.
	ScopeDescriptionMaxLen = 500

	// OutOfScopeFilesCap / ChangedFilesCap / RecentActionsCap bound the
	// per-project ring buffers described in the data model.
	OutOfScopeFilesCap  = 20
	ChangedFilesCap     = 30
	RecentActionsCap    = 5
	ErrorIndexCap       = 100

	// SimilarityThreshold and AutoSuggestMaxResults bound find_similar_errors.
	SimilarityThreshold   = 0.6
	AutoSuggestMaxResults = 2

	// DBSchemaCheckTTL is how long a schema fetch remains "fresh" in the
	// server's get_schema cache. The hook's staleness check does not use
	// it; the hook applies its own 600 s window (HookEnforcementTTL).
	DBSchemaCheckTTL = 300 * time.Second

	// HookEnforcementTTL is the hook's own staleness window (§6), looser
	// than DBSchemaCheckTTL to tolerate the snapshot-write/hook-read race.
	HookEnforcementTTL = 600 * time.Second

	// SyntaxValidatorTimeout bounds each syntax-check subprocess.
	SyntaxValidatorTimeout = 10 * time.Second

	// ChecklistItemTimeout bounds each checklist-command subprocess.
	ChecklistItemTimeout = 10 * time.Second

	// HTTPSessionLRUCap / HTTPSessionTTL bound the HTTP session manager.
	HTTPSessionLRUCap = 50
	HTTPSessionTTL    = 24 * time.Hour

	// TestRunnerOutputCap bounds captured subprocess stdout/stderr bytes.
	TestRunnerOutputCap = 1 << 20 // 1 MiB

	// HTTPReloginInterval throttles ensure_session's silent re-login
	// attempts so a flapping endpoint cannot trigger a login storm.
	HTTPReloginInterval = 30 * time.Second

	// HTTPBodySampleCap bounds how much of an HTTP response body the
	// session manager reads when extracting CSRF tokens or classifying
	// auth-needed responses.
	HTTPBodySampleCap = 1 << 20 // 1 MiB
)

// ChecklistWhitelist is the set of command heads the checklist runner is
// permitted to exec. No shell
// interpretation is ever performed — see internal/checklist.
var ChecklistWhitelist = map[string]bool{
	"test": true, "grep": true, "ls": true, "cat": true, "head": true,
	"wc": true, "find": true, "stat": true, "[": true, "php": true,
	"node": true, "python": true, "python3": true, "npm": true, "composer": true,
}

// SchemaFilePatterns are the substrings/suffixes that mark a tracked file
// as schema-affecting, clearing db_schema_checked_at when touched.
var SchemaFilePatterns = []string{
	".sql", "migration", "migrate", "schema", "database",
}

// IdentifierPattern-equivalent is implemented in internal/dbinspect to
// avoid an import cycle; the regex source (`^[A-Za-z_][A-Za-z0-9_]{0,127}$`)
// is documented here since it is a config-level contract.
const IdentifierPatternSource = `^[A-Za-z_][A-Za-z0-9_]{0,127}$`

// Overrides holds the subset of values an operator may set in a
// chainguard.yaml at the project root. The config tool loads and reports
// them; they do not replace the constants above, and no chainguard.yaml
// under $CHAINGUARD_HOME is read.
type Overrides struct {
	SimilarityThreshold    *float64 `yaml:"similarity_threshold,omitempty"`
	AutoSuggestMaxResults  *int     `yaml:"auto_suggest_max_results,omitempty"`
	SyntaxValidatorTimeout *int     `yaml:"syntax_validator_timeout_seconds,omitempty"`
	ChecklistItemTimeout   *int     `yaml:"checklist_item_timeout_seconds,omitempty"`
}

// LoadOverrides reads chainguard.yaml from dir if present. A missing file
// is not an error — it means "use the defaults above".
func LoadOverrides(dir string) (*Overrides, error) {
	data, err := os.ReadFile(filepath.Join(dir, "chainguard.yaml"))
	if os.IsNotExist(err) {
		return &Overrides{}, nil
	}
	if err != nil {
		return nil, err
	}
	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// Home returns the storage root: $CHAINGUARD_HOME if set, else
// $HOME/.chainguard.
func Home() (string, error) {
	if h := os.Getenv(HomeEnvVar); h != "" {
		return h, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultHomeDirName), nil
}
