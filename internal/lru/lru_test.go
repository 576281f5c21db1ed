package lru

import (
	"reflect"
	"sync"
	"testing"
)

// TestCacheEvictsLeastRecentlyUsed verifies that the oldest untouched entry
// is dropped once the limit is exceeded.
func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](2)
	c.Set("a", 1)
	c.Set("b", 2)

	// Touch "a" so that "b" becomes the eviction candidate.
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %d, %v, want 1, true", v, ok)
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if got, want := c.Keys(), []string{"c", "a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

// TestCacheSetReplaces verifies that Set on an existing key updates the
// value without growing the cache.
func TestCacheSetReplaces(t *testing.T) {
	c := New[int, string](0)
	c.Set(1, "x")
	c.Set(1, "y")

	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	if v, _ := c.Get(1); v != "y" {
		t.Errorf("Get(1) = %q, want %q", v, "y")
	}
}

// TestCacheOnEvict verifies the eviction callback for capacity, Delete and
// Clear removals.
func TestCacheOnEvict(t *testing.T) {
	c := New[string, int](1)
	var evicted []string
	c.OnEvict(func(k string, _ int) { evicted = append(evicted, k) })

	c.Set("a", 1)
	c.Set("b", 2) // evicts a
	c.Delete("b")
	c.Set("c", 3)
	c.Clear()

	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(evicted, want) {
		t.Errorf("evicted = %v, want %v", evicted, want)
	}
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
}

// TestCacheGetOrCreateOnce verifies that concurrent callers share a single
// created value.
func TestCacheGetOrCreateOnce(t *testing.T) {
	c := New[string, int](0)
	var (
		mu    sync.Mutex
		calls int
		wg    sync.WaitGroup
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.GetOrCreate("k", func() int {
				mu.Lock()
				calls++
				mu.Unlock()
				return 42
			})
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
}

func TestCachePeekKeepsOrder(t *testing.T) {
	c := New[string, int](2)
	c.Set("a", 1)
	c.Set("b", 2)
	if v, ok := c.Peek("a"); !ok || v != 1 {
		t.Fatalf("Peek(a) = %d, %v, want 1, true", v, ok)
	}
	c.Set("c", 3)

	if _, ok := c.Peek("a"); ok {
		t.Error("Peek refreshed a; it should have been evicted")
	}
	if got, want := c.Keys(), []string{"c", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}
