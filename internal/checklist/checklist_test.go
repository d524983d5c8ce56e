package checklist

import (
	"context"
	"testing"
)

func TestRunOneRejectsNonWhitelisted(t *testing.T) {
	r := NewRunner(2)
	results := r.RunAllSync(context.Background(), []Item{{Name: "dangerous", Check: "rm -rf /"}})
	if results[0].Passed || results[0].Error == "" {
		t.Fatalf("expected whitelist rejection, got %+v", results[0])
	}
}

func TestRunAllSyncRunsWhitelistedCommand(t *testing.T) {
	r := NewRunner(2)
	results := r.RunAllSync(context.Background(), []Item{{Name: "list", Check: "ls ."}})
	if !results[0].Passed {
		t.Fatalf("expected ls to pass, got %+v", results[0])
	}
}

func TestRunAllAsyncBoundsConcurrencyAndReturnsAllResults(t *testing.T) {
	r := NewRunner(1)
	items := []Item{
		{Name: "a", Check: "ls ."},
		{Name: "b", Check: "ls ."},
		{Name: "c", Check: "ls ."},
	}
	results := r.RunAllAsync(context.Background(), items)
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	for _, res := range results {
		if !res.Passed {
			t.Errorf("result %+v, want passed", res)
		}
	}
}
