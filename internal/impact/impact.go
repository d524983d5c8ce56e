// Package impact implements the pattern-based code/impact analyzer used
// by finish's impact report (§4.5) and by the standalone `analyze` tool:
// simple substring/suffix hints derived from the set of changed files.
package impact

import "strings"

// Hint is one pattern-derived reminder.
type Hint struct {
	Pattern string `json:"pattern"`
	Files   []string `json:"files"`
	Message string `json:"message"`
}

// rule matches a changed file against a hint-producing pattern.
type rule struct {
	match   func(file string) bool
	pattern string
	message string
}

var rules = []rule{
	{
		pattern: "Controller",
		match:   func(f string) bool { return strings.Contains(f, "Controller") },
		message: "Controller changed — verify corresponding tests cover the new behavior.",
	},
	{
		pattern: "migration",
		match: func(f string) bool {
			lower := strings.ToLower(f)
			return strings.Contains(lower, "migration") || strings.Contains(lower, "migrate")
		},
		message: "Migration changed — check whether model definitions need updating to match.",
	},
	{
		pattern: "Model",
		match:   func(f string) bool { return strings.Contains(f, "Model") },
		message: "Model changed — confirm any related serializers/validators stay in sync.",
	},
	{
		pattern: "route",
		match: func(f string) bool {
			lower := strings.ToLower(f)
			return strings.Contains(lower, "routes") || strings.Contains(lower, "urls.py")
		},
		message: "Routing changed — re-run test_endpoint() against affected paths.",
	},
	{
		pattern: "config",
		match: func(f string) bool {
			lower := strings.ToLower(f)
			return strings.Contains(lower, "config") || strings.Contains(lower, ".env")
		},
		message: "Configuration changed — confirm secrets/env vars are documented and deployed.",
	},
}

// Analyze derives hints for the given set of changed files, grouping
// files under whichever rule(s) they match.
func Analyze(changedFiles []string) []Hint {
	buckets := map[string]*Hint{}
	var order []string

	for _, f := range changedFiles {
		for _, r := range rules {
			if r.match(f) {
				h, ok := buckets[r.pattern]
				if !ok {
					h = &Hint{Pattern: r.pattern, Message: r.message}
					buckets[r.pattern] = h
					order = append(order, r.pattern)
				}
				h.Files = append(h.Files, f)
			}
		}
	}

	hints := make([]Hint, 0, len(order))
	for _, p := range order {
		hints = append(hints, *buckets[p])
	}
	return hints
}
