package cache

import "sync"

// KeyedMutex is the lazily-initialized global path-lock map described in
// the concurrency model: a top-level mutex guards creation of per-key
// locks, and each key's lock is reference-counted so it is pruned as soon
// as its last holder unlocks it — the "lazy global lock" design note.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refCountedMutex
}

type refCountedMutex struct {
	mu  sync.Mutex
	ref int
}

// NewKeyedMutex creates an empty keyed-mutex map. The zero value is not
// usable — callers must go through this constructor so the internal map
// is initialized.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*refCountedMutex)}
}

// Lock acquires the lock for key, creating it on first use. The returned
// unlock function must be called exactly once to release it and allow
// pruning.
func (k *KeyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	rc, ok := k.locks[key]
	if !ok {
		rc = &refCountedMutex{}
		k.locks[key] = rc
	}
	rc.ref++
	k.mu.Unlock()

	rc.mu.Lock()

	return func() {
		rc.mu.Unlock()
		k.mu.Lock()
		rc.ref--
		if rc.ref <= 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// Len reports how many keys currently hold a live lock entry (held or
// merely referenced). Exposed for tests verifying pruning behavior.
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
