package validate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCheckJSONValid(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.json")
	if err := os.WriteFile(file, []byte(`{"a":1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	mx := NewMultiplexer(2 * time.Second)
	res := mx.Check(context.Background(), file)
	if !res.Valid || res.Checked != "json" {
		t.Errorf("Check() = %+v, want valid json", res)
	}
}

func TestCheckJSONInvalid(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.json")
	if err := os.WriteFile(file, []byte(`{"a":}`), 0o644); err != nil {
		t.Fatal(err)
	}
	mx := NewMultiplexer(2 * time.Second)
	res := mx.Check(context.Background(), file)
	if res.Valid {
		t.Errorf("Check() = %+v, want invalid", res)
	}
}

func TestCheckUnregisteredExtensionSkips(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.md")
	if err := os.WriteFile(file, []byte("# hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	mx := NewMultiplexer(2 * time.Second)
	res := mx.Check(context.Background(), file)
	if res.Checked != "SKIP" || !res.Valid {
		t.Errorf("Check() = %+v, want SKIP/valid", res)
	}
}

func TestCheckMissingToolSkips(t *testing.T) {
	// .php requires the "php" binary; in a minimal CI container it may be
	// absent, which must degrade to SKIP rather than failure.
	if _, err := os.Stat("/usr/bin/php"); err == nil {
		t.Skip("php is installed; SKIP path not exercised here")
	}
	dir := t.TempDir()
	file := filepath.Join(dir, "a.php")
	if err := os.WriteFile(file, []byte("<?php echo 1;"), 0o644); err != nil {
		t.Fatal(err)
	}
	mx := NewMultiplexer(2 * time.Second)
	res := mx.Check(context.Background(), file)
	if res.Checked != "SKIP" {
		t.Errorf("Check() = %+v, want SKIP when php is missing", res)
	}
}
