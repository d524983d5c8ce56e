package history

import (
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func TestFilePattern(t *testing.T) {
	cases := map[string]string{
		"UserController.php":  "*Controller.php",
		"OrderModel.py":       "*Model.py",
		"index.js":            "*.js",
		"src/a/UserService.ts": "*Service.ts",
	}
	for in, want := range cases {
		if got := FilePattern(in); got != want {
			t.Errorf("FilePattern(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLogAppendOnly(t *testing.T) {
	dir := t.TempDir()
	log := NewLog(filepath.Join(dir, "history.jsonl"))

	for i := 0; i < 3; i++ {
		if err := log.Append(Entry{TS: time.Now(), File: "a.php", Action: ActionEdit, Validation: "PASS"}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	entries, err := log.Tail(0)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}

	size1, _ := log.Size()
	if err := log.Append(Entry{TS: time.Now(), File: "b.php", Action: ActionCreate, Validation: "PASS"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	size2, _ := log.Size()
	if size2 <= size1 {
		t.Errorf("size did not grow: %d -> %d", size1, size2)
	}
}

func TestErrorIndexBoundedFIFO(t *testing.T) {
	dir := t.TempDir()
	idx := NewErrorIndex(filepath.Join(dir, "error_index.json"))

	for i := 0; i < 105; i++ {
		e := ErrorEntry{
			FilePattern: fmt_sprintf(i),
			ErrorType:   "SyntaxError",
			ErrorMsg:    "error",
			ProjectID:   "p1",
		}
		if err := idx.Add(e); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	doc, err := idx.load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(doc.Entries) != 100 {
		t.Fatalf("len(entries) = %d, want 100 (bounded)", len(doc.Entries))
	}
}

func fmt_sprintf(i int) string {
	return "*" + strconv.Itoa(i) + ".php"
}

func TestFindSimilarRequiresResolutionAndThreshold(t *testing.T) {
	dir := t.TempDir()
	idx := NewErrorIndex(filepath.Join(dir, "error_index.json"))

	resolved := ErrorEntry{
		FilePattern: "*Controller.php",
		ErrorType:   "SyntaxError",
		ErrorMsg:    "php syntax error unexpected token",
		ScopeDesc:   "implement auth controller",
		Resolution:  "added missing semicolon",
	}
	unresolved := ErrorEntry{
		FilePattern: "*Model.php",
		ErrorType:   "SyntaxError",
		ErrorMsg:    "php syntax error unexpected token",
	}
	if err := idx.Add(resolved); err != nil {
		t.Fatal(err)
	}
	if err := idx.Add(unresolved); err != nil {
		t.Fatal(err)
	}

	matches, err := idx.FindSimilar("php syntax error")
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	if len(matches) != 1 || matches[0].Resolution == "" {
		t.Fatalf("FindSimilar() = %+v, want exactly the resolved entry", matches)
	}
}

func TestRecallIgnoresResolution(t *testing.T) {
	dir := t.TempDir()
	idx := NewErrorIndex(filepath.Join(dir, "error_index.json"))
	if err := idx.Add(ErrorEntry{FilePattern: "*.py", ErrorType: "SyntaxError", ErrorMsg: "python syntax error"}); err != nil {
		t.Fatal(err)
	}
	got, err := idx.Recall("python syntax", 5)
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Recall() returned %d results, want 1", len(got))
	}
}
