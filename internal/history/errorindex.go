package history

import (
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/kodestack/chainguard/internal/config"
)

// indexDocument is the on-disk shape of error_index.json (§6).
type indexDocument struct {
	Entries []ErrorEntry `json:"entries"`
}

// ErrorIndex is the bounded, FIFO-on-overflow error index for one
// project, keyed implicitly by (file_pattern, error_type) — a new entry
// for an existing key updates it in place rather than duplicating it.
type ErrorIndex struct {
	path string
}

func NewErrorIndex(path string) *ErrorIndex {
	return &ErrorIndex{path: path}
}

func (idx *ErrorIndex) load() (indexDocument, error) {
	data, err := os.ReadFile(idx.path)
	if os.IsNotExist(err) {
		return indexDocument{}, nil
	}
	if err != nil {
		return indexDocument{}, err
	}
	var doc indexDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return indexDocument{}, err
	}
	return doc, nil
}

func (idx *ErrorIndex) save(doc indexDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp := idx.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, idx.path)
}

// Add inserts or updates an ErrorEntry keyed by (file_pattern, error_type),
// trimming the oldest entry (FIFO) when the index exceeds the bound.
func (idx *ErrorIndex) Add(e ErrorEntry) error {
	doc, err := idx.load()
	if err != nil {
		return err
	}

	replaced := false
	for i := range doc.Entries {
		if doc.Entries[i].FilePattern == e.FilePattern && doc.Entries[i].ErrorType == e.ErrorType {
			doc.Entries[i] = e
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Entries = append(doc.Entries, e)
	}
	if len(doc.Entries) > config.ErrorIndexCap {
		doc.Entries = doc.Entries[len(doc.Entries)-config.ErrorIndexCap:]
	}
	return idx.save(doc)
}

// scored pairs an ErrorEntry with its similarity score against a query.
type scored struct {
	entry ErrorEntry
	score float64
}

// FindSimilar returns up to config.AutoSuggestMaxResults entries scoring
// above config.SimilarityThreshold that carry a Resolution (§4.7).
func (idx *ErrorIndex) FindSimilar(query string) ([]ErrorEntry, error) {
	doc, err := idx.load()
	if err != nil {
		return nil, err
	}
	var candidates []scored
	for _, e := range doc.Entries {
		if e.Resolution == "" {
			continue
		}
		s := Matches(e, query)
		if s > config.SimilarityThreshold {
			candidates = append(candidates, scored{entry: e, score: s})
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if len(candidates) > config.AutoSuggestMaxResults {
		candidates = candidates[:config.AutoSuggestMaxResults]
	}
	out := make([]ErrorEntry, len(candidates))
	for i, c := range candidates {
		out[i] = c.entry
	}
	return out, nil
}

// Recall returns the best-scoring matches regardless of Resolution,
// bounded by limit (0 means no extra bound beyond the index itself).
func (idx *ErrorIndex) Recall(query string, limit int) ([]ErrorEntry, error) {
	doc, err := idx.load()
	if err != nil {
		return nil, err
	}
	var candidates []scored
	for _, e := range doc.Entries {
		s := Matches(e, query)
		if s > 0 {
			candidates = append(candidates, scored{entry: e, score: s})
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]ErrorEntry, len(candidates))
	for i, c := range candidates {
		out[i] = c.entry
	}
	return out, nil
}

// Matches scores query against an ErrorEntry's error_msg, file_pattern,
// and scope_desc using a frozen token-overlap scorer: both sides are
// lowercased and split on non-alphanumeric runs, and the score is the
// fraction of the query's tokens that appear anywhere in the three
// fields combined (1.0 when every query token is present).
func Matches(e ErrorEntry, query string) float64 {
	q := tokenize(query)
	if len(q) == 0 {
		return 0
	}
	fields := tokenize(e.ErrorMsg + " " + e.FilePattern + " " + e.ScopeDesc)
	hit := 0
	for t := range q {
		if fields[t] {
			hit++
		}
	}
	return float64(hit) / float64(len(q))
}

func tokenize(s string) map[string]bool {
	s = strings.ToLower(s)
	var b strings.Builder
	toks := map[string]bool{}
	flush := func() {
		if b.Len() > 0 {
			toks[b.String()] = true
			b.Reset()
		}
	}
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return toks
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if b[t] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
