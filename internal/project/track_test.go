package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kodestack/chainguard/internal/history"
	"github.com/kodestack/chainguard/internal/validate"
)

func TestTrackInvariantFilesSinceValidation(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.json")
	if err := os.WriteFile(file, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	st := NewState("id", "n", dir)
	mx := validate.NewMultiplexer(2 * time.Second)

	for i := 0; i < 5; i++ {
		if _, err := Track(context.Background(), st, dir, TrackInput{File: "a.json", Action: history.ActionEdit}, mx, nil, nil); err != nil {
			t.Fatalf("Track: %v", err)
		}
		if st.FilesSinceValidation > st.FilesChanged {
			t.Fatalf("invariant violated: files_since_validation=%d > files_changed=%d", st.FilesSinceValidation, st.FilesChanged)
		}
	}
}

func TestTrackSchemaFileClearsCheckedAt(t *testing.T) {
	dir := t.TempDir()
	st := NewState("id", "n", dir)
	now := time.Now()
	st.DBSchemaCheckedAt = &now

	out, err := Track(context.Background(), st, dir, TrackInput{File: "db/001.sql", Action: history.ActionCreate, SkipValidation: true}, nil, nil, nil)
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if !out.SchemaStale || st.DBSchemaCheckedAt != nil {
		t.Errorf("expected schema-stale, got outcome=%+v checkedAt=%v", out, st.DBSchemaCheckedAt)
	}
}

func TestTrackContentModeSkipsSyntax(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "chapter1.md")
	if err := os.WriteFile(file, []byte("bad php <?php $x=;"), 0o644); err != nil {
		t.Fatal(err)
	}
	st := NewState("id", "n", dir)
	st.Mode = ModeContent

	out, err := Track(context.Background(), st, dir, TrackInput{File: "chapter1.md", Action: history.ActionEdit}, validate.NewMultiplexer(time.Second), nil, nil)
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if out.ValidationResult != nil {
		t.Errorf("content mode should not attempt syntax validation, got %+v", out.ValidationResult)
	}
}

func TestTrackOutOfScopeModule(t *testing.T) {
	dir := t.TempDir()
	st := NewState("id", "n", dir)
	st.Scope = &ScopeDefinition{Modules: []string{"src/**"}}

	out, err := Track(context.Background(), st, dir, TrackInput{File: "docs/readme.md", Action: history.ActionEdit, SkipValidation: true}, nil, nil, nil)
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if !out.OutOfScope {
		t.Errorf("expected out-of-scope flag for file outside declared modules")
	}
	if len(st.OutOfScopeFiles) != 1 || st.OutOfScopeFiles[0] != "docs/readme.md" {
		t.Errorf("OutOfScopeFiles = %v", st.OutOfScopeFiles)
	}
}
