package project

import (
	"fmt"
	"sync"
	"time"

	"github.com/kodestack/chainguard/internal/cache"
	"github.com/kodestack/chainguard/internal/config"
)

// Manager owns the in-memory map of ProjectState exclusively (§3
// ownership rule): a bounded LRU of cached states, a lazily-initialized
// per-project lock map, and per-project debounce timers. It is the
// composition point for the tracking cascade and the completion gate.
type Manager struct {
	store *Store

	mu      sync.Mutex // guards dirty/timers maps below
	dirty   map[string]*State
	timers  map[string]*time.Timer

	locks *cache.KeyedMutex
	lru   *cache.LRU[*State]
}

// NewManager wires a Manager around store, with the project LRU bounded
// per config.ProjectLRUCap. Evicted entries are flushed before eviction
// so no dirty state is silently dropped.
func NewManager(store *Store) *Manager {
	m := &Manager{
		store:  store,
		dirty:  make(map[string]*State),
		timers: make(map[string]*time.Timer),
		locks:  cache.NewKeyedMutex(),
	}
	m.lru = cache.NewLRU[*State](config.ProjectLRUCap, m.onEvict)
	return m
}

func (m *Manager) onEvict(id string, st *State) {
	// Flush any pending debounced write before the cached copy is dropped;
	// a subsequent Get will reload from disk.
	m.mu.Lock()
	_, stillDirty := m.dirty[id]
	m.mu.Unlock()
	if stillDirty {
		_ = m.flushOne(id)
	}
}

// Resolve derives the project ID for workingDir and returns it alongside
// a best-effort project name (the last path component).
func Resolve(workingDir string) (id, name string, err error) {
	id, err = DeriveID(workingDir)
	if err != nil {
		return "", "", err
	}
	name = baseName(workingDir)
	return id, name, nil
}

func baseName(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' || p[i] == '\\' {
			return p[i+1:]
		}
	}
	return p
}

// WithProject acquires the per-project lock for id for the duration of fn,
// loading state (cold-starting it if absent) before calling fn and caching
// whatever fn returns. This is the "handler holds the per-project lock for
// the duration of its read-modify cycle" rule from §5.
func (m *Manager) WithProject(id, path string, fn func(st *State) error) (*State, error) {
	unlock := m.locks.Lock(id)
	defer unlock()

	st, err := m.load(id, path)
	if err != nil {
		return nil, err
	}

	if err := fn(st); err != nil {
		return st, err
	}

	m.lru.Put(id, st)
	return st, nil
}

func (m *Manager) load(id, path string) (*State, error) {
	if st, ok := m.lru.Get(id); ok {
		return st, nil
	}
	st, err := m.store.Load(id)
	if err != nil {
		return nil, fmt.Errorf("project: load %s: %w", id, err)
	}
	if st == nil {
		st = NewState(id, baseName(path), path)
	}
	m.lru.Put(id, st)
	return st, nil
}

// MarkDirty schedules a debounced, coalesced write for id after
// config.DebounceWindow of quiescence. Additional calls before the
// window elapses reset the timer (§4.1/§5 debounce contract).
func (m *Manager) MarkDirty(id string, st *State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dirty[id] = st
	if t, ok := m.timers[id]; ok {
		t.Stop()
	}
	m.timers[id] = time.AfterFunc(config.DebounceWindow, func() {
		_ = m.flushOne(id)
	})
}

// SaveImmediate bypasses the debounce window, writing state.json and the
// enforcement snapshot synchronously. Used by set_scope, finish, and
// orderly shutdown.
func (m *Manager) SaveImmediate(st *State) error {
	m.mu.Lock()
	if t, ok := m.timers[st.ProjectID]; ok {
		t.Stop()
		delete(m.timers, st.ProjectID)
	}
	delete(m.dirty, st.ProjectID)
	m.mu.Unlock()

	return m.persist(st)
}

// persist writes state.json then synchronously refreshes the enforcement
// snapshot — "always updated synchronously after each save_async" (§5).
// A write failure does not crash the service: the project stays marked
// dirty for retry on the next mutation (§4.1 failure semantics).
func (m *Manager) persist(st *State) error {
	if err := m.store.Save(st); err != nil {
		m.mu.Lock()
		m.dirty[st.ProjectID] = st
		m.mu.Unlock()
		return fmt.Errorf("project: save: %w", err)
	}
	snap := SnapshotOf(st)
	if err := m.store.WriteSnapshot(snap); err != nil {
		return fmt.Errorf("project: write snapshot: %w", err)
	}
	return nil
}

func (m *Manager) flushOne(id string) error {
	m.mu.Lock()
	st, ok := m.dirty[id]
	if ok {
		delete(m.dirty, id)
	}
	delete(m.timers, id)
	m.mu.Unlock()

	if !ok {
		return nil
	}
	return m.persist(st)
}

// Flush awaits every pending debounced write — required on shutdown so
// no mutation is lost.
func (m *Manager) Flush() error {
	m.mu.Lock()
	ids := make([]string, 0, len(m.dirty))
	for id := range m.dirty {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	var firstErr error
	for _, id := range ids {
		if err := m.flushOne(id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// PendingWriteCount reports how many projects currently have a pending
// debounced write, for tests asserting coalescing behavior.
func (m *Manager) PendingWriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dirty)
}
