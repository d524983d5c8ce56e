package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHomeDefault(t *testing.T) {
	t.Setenv(HomeEnvVar, "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir in this environment")
	}
	got, err := Home()
	if err != nil {
		t.Fatalf("Home() error: %v", err)
	}
	want := filepath.Join(home, DefaultHomeDirName)
	if got != want {
		t.Errorf("Home() = %q, want %q", got, want)
	}
}

func TestHomeOverride(t *testing.T) {
	t.Setenv(HomeEnvVar, "/tmp/custom-chainguard")
	got, err := Home()
	if err != nil {
		t.Fatalf("Home() error: %v", err)
	}
	if got != "/tmp/custom-chainguard" {
		t.Errorf("Home() = %q, want override", got)
	}
}

func TestLoadOverridesMissingFile(t *testing.T) {
	dir := t.TempDir()
	o, err := LoadOverrides(dir)
	if err != nil {
		t.Fatalf("LoadOverrides() error: %v", err)
	}
	if o.SimilarityThreshold != nil {
		t.Errorf("expected nil override, got %v", *o.SimilarityThreshold)
	}
}

func TestLoadOverridesPresent(t *testing.T) {
	dir := t.TempDir()
	content := "similarity_threshold: 0.75\nauto_suggest_max_results: 3\n"
	if err := os.WriteFile(filepath.Join(dir, "chainguard.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write chainguard.yaml: %v", err)
	}
	o, err := LoadOverrides(dir)
	if err != nil {
		t.Fatalf("LoadOverrides() error: %v", err)
	}
	if o.SimilarityThreshold == nil || *o.SimilarityThreshold != 0.75 {
		t.Errorf("SimilarityThreshold = %v, want 0.75", o.SimilarityThreshold)
	}
	if o.AutoSuggestMaxResults == nil || *o.AutoSuggestMaxResults != 3 {
		t.Errorf("AutoSuggestMaxResults = %v, want 3", o.AutoSuggestMaxResults)
	}
}

func TestChecklistWhitelist(t *testing.T) {
	for _, cmd := range []string{"test", "grep", "php", "node", "npm"} {
		if !ChecklistWhitelist[cmd] {
			t.Errorf("expected %q to be whitelisted", cmd)
		}
	}
	if ChecklistWhitelist["rm"] {
		t.Errorf("rm must never be whitelisted")
	}
}
