package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// Log appends HistoryEntry records to history.jsonl, one JSON object per
// line, via O_APPEND — the file is strictly append-only (§8 testable
// property: file size is non-decreasing across normal operation).
type Log struct {
	path string
}

func NewLog(path string) *Log {
	return &Log{path: path}
}

// Append writes one entry to the log.
func (l *Log) Append(e Entry) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("history: open %s: %w", l.path, err)
	}
	defer func() { _ = f.Close() }()

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("history: marshal entry: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("history: append: %w", err)
	}
	return nil
}

// Tail reads up to limit most-recent entries (0 means all) from the log.
// It is a best-effort reader used by recall/history tools; a missing file
// returns an empty slice, not an error.
func (l *Log) Tail(limit int) ([]Entry, error) {
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", l.path, err)
	}
	defer func() { _ = f.Close() }()

	var all []Entry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue // skip malformed lines rather than failing the whole read
		}
		all = append(all, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("history: scan: %w", err)
	}

	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

// Size returns the current file size in bytes, 0 if it does not exist yet.
// Used by tests asserting the append-only property.
func (l *Log) Size() (int64, error) {
	info, err := os.Stat(l.path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
