package cache

import (
	"fmt"
	"testing"
	"time"
)

// fixed lets tests control the clock without sleeping.
func fixed(c *Cache, at time.Time) {
	c.now = func() time.Time { return at }
}

func TestCache_SetGet(t *testing.T) {
	c := New(10)

	c.Set("k", "v", time.Minute)
	got, ok := c.Get("k")
	if !ok {
		t.Fatalf("expected hit")
	}
	if got.(string) != "v" {
		t.Fatalf("expected v, got %v", got)
	}

	if _, ok := c.Get("missing"); ok {
		t.Fatalf("expected miss for absent key")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	c := New(10)
	start := time.Now()
	fixed(c, start)

	c.Set("k", 42, 100*time.Millisecond)

	if _, ok := c.Get("k"); !ok {
		t.Fatalf("expected hit before expiry")
	}

	fixed(c, start.Add(101*time.Millisecond))
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected miss after expiry")
	}
	// Expired read deletes the entry.
	if c.Len() != 0 {
		t.Fatalf("expected lazy eviction on expired get, len=%d", c.Len())
	}
}

func TestCache_CapacityBound(t *testing.T) {
	const maxSize = 50
	c := New(maxSize)

	for i := 0; i < maxSize*3; i++ {
		c.Set(fmt.Sprintf("key-%d", i), i, time.Hour)
		if c.Len() > maxSize {
			t.Fatalf("cache exceeded capacity: %d > %d", c.Len(), maxSize)
		}
	}
}

func TestCache_CleanupEvictsExpiredFirst(t *testing.T) {
	c := New(4)
	start := time.Now()
	fixed(c, start)

	c.Set("expired-1", 1, time.Millisecond)
	c.Set("expired-2", 2, time.Millisecond)
	c.Set("fresh-1", 3, time.Hour)

	fixed(c, start.Add(time.Second))
	// Fourth insert hits capacity and triggers cleanup; both expired
	// entries go, the fresh one survives.
	c.Set("fresh-2", 4, time.Hour)

	if _, ok := c.Get("fresh-1"); !ok {
		t.Fatalf("fresh entry evicted before expired ones")
	}
	if _, ok := c.Get("fresh-2"); !ok {
		t.Fatalf("new entry missing")
	}
	if _, ok := c.Get("expired-1"); ok {
		t.Fatalf("expired entry survived cleanup")
	}
}

func TestCache_CleanupEvictsOldestExpiry(t *testing.T) {
	const maxSize = 10
	c := New(maxSize)
	start := time.Now()
	fixed(c, start)

	// Fill with unexpired entries whose expiries ascend with i.
	for i := 0; i < maxSize; i++ {
		c.Set(fmt.Sprintf("key-%d", i), i, time.Duration(i+1)*time.Hour)
	}

	c.Set("overflow", 99, 24*time.Hour)

	// key-0 has the soonest expiry and should be the eviction victim.
	if _, ok := c.Get("key-0"); ok {
		t.Fatalf("expected oldest-expiry entry to be evicted")
	}
	if _, ok := c.Get("overflow"); !ok {
		t.Fatalf("expected overflow entry to be stored")
	}
	if c.Len() > maxSize {
		t.Fatalf("capacity exceeded after overflow: %d", c.Len())
	}
}

func TestCache_DeleteClear(t *testing.T) {
	c := New(10)
	c.Set("a", 1, time.Hour)
	c.Set("b", 2, time.Hour)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected miss after delete")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after clear, len=%d", c.Len())
	}
}

func TestCache_Stats(t *testing.T) {
	c := New(10)
	start := time.Now()
	fixed(c, start)

	c.Set("live", 1, time.Hour)
	c.Set("dead", 2, time.Millisecond)

	fixed(c, start.Add(time.Second))
	total, expired, active := c.Stats()
	if total != 2 || expired != 1 || active != 1 {
		t.Fatalf("unexpected stats: total=%d expired=%d active=%d", total, expired, active)
	}
}
