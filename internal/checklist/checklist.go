// Package checklist implements the whitelisted-command checklist runner
// (§4.11): each item's check command is tokenized by whitespace (no
// shell interpretation), validated against a fixed whitelist, and run
// with a per-item timeout. run_all_async bounds concurrency with a
// semaphore, grounded on steveyegge-vc's supervisor.go use of
// golang.org/x/sync/semaphore to bound parallel subprocess work; the
// sync facade simply runs the same per-item logic one at a time.
package checklist

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/kodestack/chainguard/internal/config"
)

// Item is one checklist entry: a human label and the command to run.
type Item struct {
	Name  string
	Check string
}

// Result is one item's outcome.
type Result struct {
	Item     string `json:"item"`
	Passed   bool   `json:"passed"`
	Output   string `json:"output,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ErrNotWhitelisted is the error whose message is recorded in an item's
// Result.Error when its command head is not in config.ChecklistWhitelist.
var ErrNotWhitelisted = fmt.Errorf("command not in checklist whitelist")

// Runner executes checklist items with the configured per-item timeout
// and max concurrency.
type Runner struct {
	MaxConcurrency int64
}

// NewRunner creates a Runner bounded by config.ChecklistItemTimeout per
// item and maxConcurrency simultaneous subprocesses.
func NewRunner(maxConcurrency int64) *Runner {
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	return &Runner{MaxConcurrency: maxConcurrency}
}

// runOne tokenizes and runs a single item's check command under ctx.
func runOne(ctx context.Context, it Item) Result {
	fields := strings.Fields(it.Check)
	if len(fields) == 0 {
		return Result{Item: it.Name, Passed: false, Error: "empty check command"}
	}
	head := fields[0]
	if !config.ChecklistWhitelist[head] {
		return Result{Item: it.Name, Passed: false, Error: fmt.Sprintf("%v: %q", ErrNotWhitelisted, head)}
	}

	cctx, cancel := context.WithTimeout(ctx, config.ChecklistItemTimeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, head, fields[1:]...)
	out, err := cmd.CombinedOutput()

	if cctx.Err() == context.DeadlineExceeded {
		return Result{Item: it.Name, Passed: false, Error: "timed out", Output: string(out)}
	}
	if err != nil {
		return Result{Item: it.Name, Passed: false, Error: err.Error(), Output: string(out)}
	}
	return Result{Item: it.Name, Passed: true, Output: string(out)}
}

// RunAllSync runs every item sequentially, in order.
func (r *Runner) RunAllSync(ctx context.Context, items []Item) []Result {
	results := make([]Result, len(items))
	for i, it := range items {
		results[i] = runOne(ctx, it)
	}
	return results
}

// RunAllAsync runs items concurrently, bounded by r.MaxConcurrency.
func (r *Runner) RunAllAsync(ctx context.Context, items []Item) []Result {
	sem := semaphore.NewWeighted(r.MaxConcurrency)
	results := make([]Result, len(items))

	var wg sync.WaitGroup
	for i, it := range items {
		i, it := i, it
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = Result{Item: it.Name, Passed: false, Error: err.Error()}
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = runOne(ctx, it)
		}()
	}
	wg.Wait()
	return results
}
