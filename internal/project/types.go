// Package project implements chainguard's core data model and the
// per-project state manager: ID derivation, the bounded LRU, debounced
// disk writes, the enforcement snapshot, and the tracking/completion-gate
// operations that mutate ProjectState.
package project

import "time"

// Phase is the project's pipeline phase.
type Phase string

const (
	PhasePlanning       Phase = "planning"
	PhaseImplementation Phase = "implementation"
	PhaseTesting        Phase = "testing"
	PhaseReview         Phase = "review"
	PhaseDone           Phase = "done"
	PhaseUnknown        Phase = "unknown"
)

// TaskMode selects which validators, enforcements, and extra tools are
// active for the current scope (§4.3).
type TaskMode string

const (
	ModeProgramming TaskMode = "programming"
	ModeContent     TaskMode = "content"
	ModeDevops      TaskMode = "devops"
	ModeResearch    TaskMode = "research"
	ModeGeneric     TaskMode = "generic"
)

// Severity classifies an Alert.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarn    Severity = "warn"
	SeverityBlocking Severity = "blocking"
)

// Alert is an operator/agent-visible notice attached to a project. A
// blocking, unacknowledged alert halts finish unconditionally (I3).
type Alert struct {
	Message      string    `json:"message"`
	Severity     Severity  `json:"severity"`
	CreatedAt    time.Time `json:"created_at"`
	Acknowledged bool      `json:"acknowledged"`
}

// ChecklistItem pairs a human-readable label with the whitelisted shell
// command internal/checklist will run to verify it.
type ChecklistItem struct {
	Item  string `json:"item"`
	Check string `json:"check"`
}

// ScopeDefinition is the in-progress task declaration created by
// set_scope and cleared by finish.
type ScopeDefinition struct {
	Description        string          `json:"description"`
	Modules            []string        `json:"modules"`
	AcceptanceCriteria []string        `json:"acceptance_criteria"`
	Checklist          []ChecklistItem `json:"checklist"`
	CreatedAt          time.Time       `json:"created_at"`
}

// TestConfig is the agent-declared test invocation for run_tests.
type TestConfig struct {
	Command    string   `json:"command"`
	Args       []string `json:"args"`
	Timeout    int      `json:"timeout_seconds"`
	WorkingDir string   `json:"working_dir,omitempty"`
}

// TestResult is the latest outcome recorded by internal/testrunner.
type TestResult struct {
	Success    bool      `json:"success"`
	Passed     int       `json:"passed"`
	Failed     int       `json:"failed"`
	Total      int       `json:"total"`
	DurationMS int64     `json:"duration_ms"`
	Framework  string    `json:"framework,omitempty"`
	Output     string    `json:"output,omitempty"`
	ErrorLines []string  `json:"error_lines,omitempty"`
	ExitCode   int       `json:"exit_code"`
	Timestamp  time.Time `json:"timestamp"`
}

// KanbanRef names the Kanban board associated with this project, if any.
type KanbanRef struct {
	BoardID string `json:"board_id,omitempty"`
}

// HTTPCredentials are scope-local login credentials; they must never
// persist to disk outside the scope's lifetime (ownership rule, §3).
type HTTPCredentials struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// DBConfig is the connection db_connect saved (with remember=true) after
// a successful connect, so a later db_connect call made with no
// parameters can reconnect using the same credentials. Password is
// obfuscated, not encrypted — see dbinspect.ObfuscatePassword.
type DBConfig struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Database  string `json:"database"`
	Engine    string `json:"db_type"`
	User      string `json:"user,omitempty"`
	Password  string `json:"password_obfuscated,omitempty"`
	Connected bool   `json:"connected"`
}

// State is ProjectState: the full persisted record for one project,
// uniquely keyed by ProjectID.
type State struct {
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	ProjectPath string `json:"project_path"`

	Phase       Phase  `json:"phase"`
	CurrentTask string `json:"current_task"`

	FilesChanged         int `json:"files_changed"`
	FilesSinceValidation int `json:"files_since_validation"`
	ValidationsPassed    int `json:"validations_passed"`
	ValidationsFailed    int `json:"validations_failed"`
	TestsPassed          int `json:"tests_passed"`
	TestsFailed          int `json:"tests_failed"`
	HTTPTestsPerformed   int `json:"http_tests_performed"`

	LastValidation   *time.Time `json:"last_validation,omitempty"`
	LastActivity     *time.Time `json:"last_activity,omitempty"`
	SessionStart     time.Time  `json:"session_start"`
	DBSchemaCheckedAt *time.Time `json:"db_schema_checked_at,omitempty"`

	Scope *ScopeDefinition `json:"scope,omitempty"`
	Mode  TaskMode         `json:"mode"`

	CriteriaStatus   map[string]bool `json:"criteria_status"`
	ChecklistResults map[string]bool `json:"checklist_results"`
	Alerts           []Alert         `json:"alerts"`

	OutOfScopeFiles []string `json:"out_of_scope_files"`
	ChangedFiles    []string `json:"changed_files"`
	RecentActions   []string `json:"recent_actions"`

	HTTPBaseURL     string           `json:"http_base_url,omitempty"`
	HTTPCredentials *HTTPCredentials `json:"http_credentials,omitempty"`
	Kanban          KanbanRef        `json:"kanban"`

	// DBConfig is the remembered connection for db_connect, if any (§4.9).
	DBConfig *DBConfig `json:"db_config,omitempty"`

	TestConfig  *TestConfig  `json:"test_config,omitempty"`
	TestResults *TestResult  `json:"test_results,omitempty"`

	// ImpactCheckPending marks that finish(confirmed=false) has computed an
	// impact report and is awaiting a confirmed=true call (§4.5).
	ImpactCheckPending bool `json:"impact_check_pending"`

	// WordCount / ChapterCount support the content mode's extras.
	WordCount    int            `json:"word_count"`
	ChapterFiles map[string]int `json:"chapter_files,omitempty"`

	// Devops-mode extras.
	CommandLog  []string `json:"command_log,omitempty"`
	Checkpoints []string `json:"checkpoints,omitempty"`

	// Research-mode extras.
	Sources []string `json:"sources,omitempty"`
	Facts   []string `json:"facts,omitempty"`
}

// NewState returns a cold-start ProjectState for a freshly seen project.
func NewState(id, name, path string) *State {
	now := time.Now()
	return &State{
		ProjectID:        id,
		ProjectName:      name,
		ProjectPath:      path,
		Phase:            PhaseUnknown,
		Mode:             ModeProgramming,
		SessionStart:     now,
		CriteriaStatus:   map[string]bool{},
		ChecklistResults: map[string]bool{},
	}
}

// EnforcementSnapshot is the minimal document the hook reads independently
// (§4.1); it must remain a superset-compatible shape across versions.
type EnforcementSnapshot struct {
	ProjectID          string            `json:"project_id"`
	HasScope           bool              `json:"has_scope"`
	Mode               TaskMode          `json:"mode"`
	DBSchemaCheckedAt  *time.Time        `json:"db_schema_checked_at,omitempty"`
	HTTPTestsPerformed int               `json:"http_tests_performed"`
	BlockingAlerts     []BlockingAlert   `json:"blocking_alerts"`
	Phase              Phase             `json:"phase"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// BlockingAlert is the trimmed alert shape published in the snapshot.
type BlockingAlert struct {
	Message string `json:"message"`
}

// SnapshotOf derives the enforcement snapshot for a state (§4.1).
func SnapshotOf(s *State) EnforcementSnapshot {
	var blocking []BlockingAlert
	for _, a := range s.Alerts {
		if a.Severity == SeverityBlocking && !a.Acknowledged {
			blocking = append(blocking, BlockingAlert{Message: a.Message})
		}
	}
	return EnforcementSnapshot{
		ProjectID:          s.ProjectID,
		HasScope:           s.Scope != nil,
		Mode:               s.Mode,
		DBSchemaCheckedAt:  s.DBSchemaCheckedAt,
		HTTPTestsPerformed: s.HTTPTestsPerformed,
		BlockingAlerts:     blocking,
		Phase:              s.Phase,
		UpdatedAt:          time.Now(),
	}
}
