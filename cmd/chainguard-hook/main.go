// Command chainguard-hook is the companion enforcement binary invoked by
// the host runtime before every file-writing tool call. It is
// deliberately self-contained: it does not import internal/project or
// internal/config, since the project ID derivation, storage-root layout,
// and snapshot shape are wire-contract strings the hook and the chainguard
// server must each reproduce independently rather than share process
// state with (§6). Any change to those contracts must be mirrored here.
package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Wire-contract constants, duplicated from internal/config on purpose.
const (
	homeDirName        = ".chainguard"
	homeEnvVar         = "CHAINGUARD_HOME"
	hookEnforcementTTL = 600 * time.Second
)

// schemaFilePatterns mirrors config.SchemaFilePatterns.
var schemaFilePatterns = []string{".sql", "migration", "migrate", "schema", "database"}

// projectMarkers are the files/dirs the hook walks upward looking for
// to locate the project root.
var projectMarkers = []string{".git", "composer.json", "package.json", ".chainguard", "CLAUDE.md"}

// hookInput is the object the host passes on stdin before a file-writing
// tool call.
type hookInput struct {
	ToolName  string         `json:"tool_name"`
	ToolInput map[string]any `json:"tool_input"`
	Cwd       string         `json:"cwd"`
}

// enforcementSnapshot mirrors project.EnforcementSnapshot's JSON shape —
// the hook only needs to read it, not construct or mutate it.
type enforcementSnapshot struct {
	ProjectID          string            `json:"project_id"`
	HasScope           bool              `json:"has_scope"`
	Mode               string            `json:"mode"`
	DBSchemaCheckedAt  *time.Time        `json:"db_schema_checked_at"`
	HTTPTestsPerformed int               `json:"http_tests_performed"`
	BlockingAlerts     []blockingAlert   `json:"blocking_alerts"`
	Phase              string            `json:"phase"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

type blockingAlert struct {
	Message string `json:"message"`
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "chainguard-hook: %v\n", err)
		os.Exit(2)
	}
}

func rootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chainguard-hook",
		Short: "Pre-write enforcement check for chainguard-tracked projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading hook input: %w", err)
			}
			return runCheck(data)
		},
	}
}

// runCheck implements the five-step contract in §6. A nil error with no
// os.Exit means "allow" (exit 0, cobra's default); every block path calls
// os.Exit(2) directly since a block is not itself an "error" in the Go
// sense — it's the intended, successful outcome of the check.
func runCheck(raw []byte) error {
	var in hookInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return fmt.Errorf("parsing hook input: %w", err)
	}

	filePath, _ := in.ToolInput["file_path"].(string)
	root := findProjectRoot(filePath, in.Cwd)

	id, err := deriveID(root)
	if err != nil {
		return fmt.Errorf("deriving project id: %w", err)
	}

	snap, err := readSnapshot(id)
	if err != nil {
		// No snapshot yet means chainguard has never tracked this project —
		// nothing to enforce.
		return nil
	}

	if touchesSchemaFile(filePath) && schemaCheckStale(snap) {
		block("blocked: schema may have changed since the last db_schema check — run db_schema() before writing %s", filePath)
	}

	if len(snap.BlockingAlerts) > 0 {
		msgs := make([]string, len(snap.BlockingAlerts))
		for i, a := range snap.BlockingAlerts {
			msgs[i] = a.Message
		}
		block("blocked: unresolved blocking alerts — %s", strings.Join(msgs, "; "))
	}

	return nil
}

// block prints a red message and exits 2, stopping the host's write.
func block(format string, args ...any) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	fmt.Fprintf(os.Stderr, "%s %s\n", red("⛔"), fmt.Sprintf(format, args...))
	os.Exit(2)
}

func touchesSchemaFile(path string) bool {
	lower := strings.ToLower(path)
	for _, pat := range schemaFilePatterns {
		if strings.Contains(lower, pat) {
			return true
		}
	}
	return false
}

func schemaCheckStale(snap *enforcementSnapshot) bool {
	if snap.DBSchemaCheckedAt == nil {
		return true
	}
	return time.Since(*snap.DBSchemaCheckedAt) > hookEnforcementTTL
}

// findProjectRoot walks upward from file_path's directory (falling back
// to cwd) looking for a project marker, per §6 step (i).
func findProjectRoot(filePath, cwd string) string {
	start := cwd
	if filePath != "" {
		start = filepath.Dir(filePath)
	}
	abs, err := filepath.Abs(start)
	if err != nil {
		return start
	}

	current := abs
	for {
		for _, marker := range projectMarkers {
			if _, err := os.Stat(filepath.Join(current, marker)); err == nil {
				return current
			}
		}
		parent := filepath.Dir(current)
		if parent == current {
			return abs
		}
		current = parent
	}
}

// deriveID reproduces project.DeriveID exactly: git remote "origin" URL,
// else git top-level path, else the absolute working directory.
func deriveID(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}

	seed := abs
	if remote, ok := gitRemoteURL(abs); ok && remote != "" {
		seed = remote
	} else if top, ok := gitTopLevel(abs); ok && top != "" {
		seed = top
	}

	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])[:16], nil
}

func gitRemoteURL(dir string) (string, bool) {
	out, err := exec.Command("git", "-C", dir, "remote", "get-url", "origin").Output()
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(out)), true
}

func gitTopLevel(dir string) (string, bool) {
	out, err := exec.Command("git", "-C", dir, "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(out)), true
}

// storageRoot returns $CHAINGUARD_HOME, or $HOME/.chainguard if unset.
func storageRoot() (string, error) {
	if h := os.Getenv(homeEnvVar); h != "" {
		return h, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeDirName), nil
}

func readSnapshot(id string) (*enforcementSnapshot, error) {
	home, err := storageRoot()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, "projects", id, "enforcement-state.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap enforcementSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
