// Package cache provides a bounded, TTL-based in-process memo store used
// for intent extraction and catalog search results.
package cache

import (
	"sort"
	"sync"
	"time"
)

type entry struct {
	data      any
	expiresAt time.Time
}

// Cache is a process-wide key/value store with per-entry TTL and a bounded
// capacity. Operations never fail; a miss is a normal outcome that the
// caller answers by recomputing. Safe for concurrent use; a get-miss
// followed by a racing set only costs a duplicate recompute since stored
// values are treated as immutable.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	maxSize int
	now     func() time.Time
}

// New creates a cache holding at most maxSize entries.
func New(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &Cache{
		entries: make(map[string]entry),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Set stores value under key with an absolute expiry of now+ttl. When the
// store is at capacity the cleanup pass runs before inserting, so the store
// never holds more than maxSize entries after a Set.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		c.cleanupLocked()
	}
	c.entries[key] = entry{data: value, expiresAt: c.now().Add(ttl)}
}

// Get returns the stored value, or false if the key is absent or expired.
// Expired entries are deleted as a side effect of the miss.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.data, true
}

// Delete removes a single entry.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the number of entries currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats reports total, expired and active entry counts.
func (c *Cache) Stats() (total, expired, active int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for _, e := range c.entries {
		if now.After(e.expiresAt) {
			expired++
		}
	}
	total = len(c.entries)
	return total, expired, total - expired
}

// cleanupLocked drops all expired entries, then, if the store is still at
// capacity, evicts the oldest-expiry entries until ~10% of maxSize is freed.
// Caller must hold c.mu.
func (c *Cache) cleanupLocked() {
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}

	if len(c.entries) < c.maxSize {
		return
	}

	type keyed struct {
		key       string
		expiresAt time.Time
	}
	remaining := make([]keyed, 0, len(c.entries))
	for k, e := range c.entries {
		remaining = append(remaining, keyed{key: k, expiresAt: e.expiresAt})
	}
	sort.Slice(remaining, func(i, j int) bool {
		if remaining[i].expiresAt.Equal(remaining[j].expiresAt) {
			return remaining[i].key < remaining[j].key
		}
		return remaining[i].expiresAt.Before(remaining[j].expiresAt)
	})

	evict := c.maxSize / 10
	if evict < 1 {
		evict = 1
	}
	if evict > len(remaining) {
		evict = len(remaining)
	}
	for _, e := range remaining[:evict] {
		delete(c.entries, e.key)
	}
}
