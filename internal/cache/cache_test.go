package cache

import (
	"testing"
	"time"
)

func TestLRUEvictsOldest(t *testing.T) {
	var evicted []string
	c := NewLRU[int](2, func(key string, value int) {
		evicted = append(evicted, key)
	})
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3) // evicts "a"

	if _, ok := c.Get("a"); ok {
		t.Errorf("expected a to be evicted")
	}
	if len(evicted) != 1 || evicted[0] != "a" {
		t.Errorf("onEvict called with %v, want [a]", evicted)
	}
	if v, ok := c.Get("b"); !ok || v != 2 {
		t.Errorf("Get(b) = %v,%v, want 2,true", v, ok)
	}
}

func TestLRUPromotesOnGet(t *testing.T) {
	var evicted []string
	c := NewLRU[int](2, func(key string, value int) { evicted = append(evicted, key) })
	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a") // promote a
	c.Put("c", 3) // should evict b, not a

	if len(evicted) != 1 || evicted[0] != "b" {
		t.Errorf("onEvict called with %v, want [b]", evicted)
	}
}

func TestTTLLRUExpires(t *testing.T) {
	fixed := time.Unix(0, 0)
	now = func() time.Time { return fixed }
	defer func() { now = time.Now }()

	c := NewTTLLRU[string](10, 5*time.Second)
	c.Put("k", "v")

	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Fatalf("Get(k) = %v,%v, want v,true", v, ok)
	}

	fixed = fixed.Add(6 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Errorf("expected k to have expired")
	}
}

func TestKeyedMutexMutualExclusion(t *testing.T) {
	km := NewKeyedMutex()
	unlock := km.Lock("path")
	done := make(chan struct{})
	go func() {
		unlock2 := km.Lock("path")
		unlock2()
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("second Lock on same key returned before first was unlocked")
	case <-time.After(20 * time.Millisecond):
	}
	unlock()
	<-done
}

func TestKeyedMutexPrunesAfterUnlock(t *testing.T) {
	km := NewKeyedMutex()
	unlock := km.Lock("a")
	unlock()
	if km.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after unlock", km.Len())
	}
}
