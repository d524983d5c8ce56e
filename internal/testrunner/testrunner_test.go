package testrunner

import (
	"context"
	"testing"
	"time"
)

func TestRunParsesPHPUnitSummary(t *testing.T) {
	res := Run(context.Background(), Config{
		Command: "sh",
		Args:    []string{"-c", "echo 'OK (12 tests, 30 assertions)'"},
		Timeout: 5 * time.Second,
	})
	if res.Framework != "phpunit" || res.Passed != 12 || !res.Success {
		t.Fatalf("got %+v", res)
	}
}

func TestRunParsesJestSummaryWithFailures(t *testing.T) {
	res := Run(context.Background(), Config{
		Command: "sh",
		Args:    []string{"-c", "echo 'Tests:       2 failed, 8 passed, 10 total'"},
		Timeout: 5 * time.Second,
	})
	if res.Framework != "jest" || res.Passed != 8 || res.Failed != 2 || res.Total != 10 || res.Success {
		t.Fatalf("got %+v", res)
	}
}

func TestRunUnrecognizedOutputWithZeroExitIsSuccess(t *testing.T) {
	res := Run(context.Background(), Config{
		Command: "sh",
		Args:    []string{"-c", "echo 'all good'; exit 0"},
		Timeout: 5 * time.Second,
	})
	if res.Framework != "" || !res.Success {
		t.Fatalf("got %+v", res)
	}
}

func TestRunNonZeroExitIsFailure(t *testing.T) {
	res := Run(context.Background(), Config{
		Command: "sh",
		Args:    []string{"-c", "echo 'boom error'; exit 1"},
		Timeout: 5 * time.Second,
	})
	if res.Success {
		t.Fatalf("expected failure, got %+v", res)
	}
	if len(res.ErrorLines) == 0 {
		t.Errorf("expected error lines to be captured")
	}
}

func TestRunTimesOut(t *testing.T) {
	res := Run(context.Background(), Config{
		Command: "sh",
		Args:    []string{"-c", "sleep 2"},
		Timeout: 50 * time.Millisecond,
	})
	if res.Success {
		t.Fatalf("expected timeout failure, got %+v", res)
	}
}
