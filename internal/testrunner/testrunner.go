// Package testrunner implements the subprocess-based test runner with
// framework auto-detection (§4.10): launch the configured command with a
// timeout, capture bounded output, and parse known test-framework
// summary lines. Grounded on haricheung-agentic-shell__executor.go's
// context-bounded exec.Command usage for the actual process plumbing.
package testrunner

import (
	"context"
	"os/exec"
	"regexp"
	"strconv"
	"time"

	"github.com/kodestack/chainguard/internal/config"
)

// Config mirrors project.TestConfig without importing internal/project,
// keeping this package a leaf dependency.
type Config struct {
	Command    string
	Args       []string
	Timeout    time.Duration
	WorkingDir string
}

// Result is the parsed TestResult (§3 data model).
type Result struct {
	Success    bool
	Passed     int
	Failed     int
	Total      int
	Duration   time.Duration
	Framework  string
	Output     string
	ErrorLines []string
	ExitCode   int
}

type frameworkPattern struct {
	name  string
	re    *regexp.Regexp
	parse func(m []string) (passed, failed, total int)
}

var patterns = []frameworkPattern{
	{
		name: "phpunit",
		re:   regexp.MustCompile(`OK \((\d+) tests?,`),
		parse: func(m []string) (int, int, int) {
			n, _ := strconv.Atoi(m[1])
			return n, 0, n
		},
	},
	{
		name: "jest",
		re:   regexp.MustCompile(`Tests:\s+(?:(\d+) failed, )?(\d+) passed, (\d+) total`),
		parse: func(m []string) (int, int, int) {
			failed, _ := strconv.Atoi(m[1])
			passed, _ := strconv.Atoi(m[2])
			total, _ := strconv.Atoi(m[3])
			return passed, failed, total
		},
	},
	{
		name: "pytest",
		re:   regexp.MustCompile(`(\d+) passed`),
		parse: func(m []string) (int, int, int) {
			n, _ := strconv.Atoi(m[1])
			return n, 0, n
		},
	},
	{
		name: "mocha",
		re:   regexp.MustCompile(`(\d+) passing`),
		parse: func(m []string) (int, int, int) {
			n, _ := strconv.Atoi(m[1])
			return n, 0, n
		},
	},
	{
		name: "vitest",
		re:   regexp.MustCompile(`Tests\s+(\d+) passed(?:\s+\|\s+(\d+) failed)?`),
		parse: func(m []string) (int, int, int) {
			passed, _ := strconv.Atoi(m[1])
			failed := 0
			if len(m) > 2 && m[2] != "" {
				failed, _ = strconv.Atoi(m[2])
			}
			return passed, failed, passed + failed
		},
	},
}

var errorLinePattern = regexp.MustCompile(`(?i)(error|fail|exception)`)

// Run launches cfg.Command with cfg.Args, bounded by cfg.Timeout, and
// parses the combined output for a known framework summary.
func Run(ctx context.Context, cfg Config) Result {
	cctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(cctx, cfg.Command, cfg.Args...)
	if cfg.WorkingDir != "" {
		cmd.Dir = cfg.WorkingDir
	}

	out, runErr := cmd.CombinedOutput()
	duration := time.Since(start)
	out = boundedOutput(out, config.TestRunnerOutputCap)
	combined := string(out)

	exitCode := 0
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}

	res := Result{Duration: duration, Output: combined, ExitCode: exitCode}

	if cctx.Err() == context.DeadlineExceeded {
		res.Success = false
		res.ErrorLines = []string{"test run timed out"}
		return res
	}

	for _, p := range patterns {
		if m := p.re.FindStringSubmatch(combined); m != nil {
			res.Framework = p.name
			res.Passed, res.Failed, res.Total = p.parse(m)
			res.Success = res.Failed == 0
			res.ErrorLines = grepLines(combined, errorLinePattern, 10)
			return res
		}
	}

	// Exit-code 0 with no parsed numbers: success with unknown counts.
	res.Success = runErr == nil && exitCode == 0
	if !res.Success {
		res.ErrorLines = grepLines(combined, errorLinePattern, 10)
	}
	return res
}

func boundedOutput(b []byte, cap int) []byte {
	if len(b) <= cap {
		return b
	}
	return b[:cap]
}

func grepLines(s string, re *regexp.Regexp, max int) []string {
	var lines []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '\n' {
			line := s[start:i]
			if re.MatchString(line) {
				lines = append(lines, line)
				if len(lines) >= max {
					break
				}
			}
			start = i + 1
		}
	}
	return lines
}
