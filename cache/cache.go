// Package cache provides a bounded in-memory content cache with
// recency/frequency-weighted eviction and optional SQLite persistence.
//
// Caching is an optimization, never a correctness dependency: a corrupt or
// unavailable persistent backing degrades to pure in-memory operation
// without raising.
package cache

import (
	"sync"
	"time"

	"github.com/fwojciec/adscan"
)

// Compile-time interface verification.
var _ adscan.ContentCache = (*Cache)(nil)

// Default bounds.
const (
	DefaultMaxEntries = 10000
	DefaultMaxBytes   = 256 << 20 // 256 MB
)

type entry struct {
	key          string
	value        []byte
	lastAccessAt time.Time
	accessCount  int64
}

// score combines recency and frequency: frequently accessed entries are
// retained preferentially over purely-recent ones. Higher is better.
func (e *entry) score(now time.Time) float64 {
	age := now.Sub(e.lastAccessAt).Seconds()
	return float64(e.accessCount) / (age + 1)
}

// Cache is a bounded content cache. It enforces two independent bounds, a
// maximum entry count and a maximum aggregate size; exceeding either evicts
// the lowest-scored entries until back under bound.
//
// Cache is safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	sizeBytes  int64
	hits       int64
	misses     int64
	maxEntries int
	maxBytes   int64

	// now is replaceable in tests.
	now func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces the time source. Used in tests to make eviction
// scoring deterministic.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a Cache bounded by maxEntries and maxBytes. Non-positive
// bounds fall back to the defaults.
func New(maxEntries int, maxBytes int64, opts ...Option) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	c := &Cache{
		entries:    make(map[string]*entry),
		maxEntries: maxEntries,
		maxBytes:   maxBytes,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key, if present.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	e.lastAccessAt = c.now()
	e.accessCount++
	return e.value, true
}

// Set stores value under key, evicting low-scored entries as needed to stay
// under both bounds. A value larger than the byte bound is not cached.
func (c *Cache) Set(key string, value []byte) {
	if int64(len(value)) > c.maxBytes {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[key]; ok {
		c.sizeBytes -= int64(len(old.value))
		old.value = value
		old.lastAccessAt = c.now()
		old.accessCount++
		c.sizeBytes += int64(len(value))
	} else {
		c.entries[key] = &entry{
			key:          key,
			value:        value,
			lastAccessAt: c.now(),
			accessCount:  1,
		}
		c.sizeBytes += int64(len(value))
	}

	c.evictLocked()
}

// evictLocked removes the lowest-scored entries until both bounds hold.
// Must be called with mu held.
func (c *Cache) evictLocked() {
	for len(c.entries) > c.maxEntries || c.sizeBytes > c.maxBytes {
		victim := c.lowestScoredLocked()
		if victim == nil {
			return
		}
		c.sizeBytes -= int64(len(victim.value))
		delete(c.entries, victim.key)
	}
}

// lowestScoredLocked returns the entry with the lowest combined
// recency+frequency score. Must be called with mu held.
func (c *Cache) lowestScoredLocked() *entry {
	now := c.now()
	var victim *entry
	var victimScore float64
	for _, e := range c.entries {
		s := e.score(now)
		if victim == nil || s < victimScore {
			victim = e
			victimScore = s
		}
	}
	return victim
}

// Stats returns cache occupancy and effectiveness counters.
func (c *Cache) Stats() adscan.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return adscan.CacheStats{
		Entries:   len(c.entries),
		SizeBytes: c.sizeBytes,
		Hits:      c.hits,
		Misses:    c.misses,
	}
}
