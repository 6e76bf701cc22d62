// Package cache provides the in-memory result cache shared by every
// classification request in the process.
package cache

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/deductible/internal/model"
)

// Defaults for the result cache.
const (
	DefaultTTL      = 15 * time.Minute
	DefaultCapacity = 1000
	evictFraction   = 0.2
)

// Entry is a cached resolution and its bookkeeping.
type Entry struct {
	CreatedAt time.Time
	Value     model.CachedResolution
	HitCount  int
}

// Stats is a point-in-time view of the cache for monitoring.
type Stats struct {
	TTL         time.Duration `json:"ttl"`
	Size        int           `json:"size"`
	Capacity    int           `json:"capacity"`
	EntryHits   int           `json:"entryHits"`
	Hits        int64         `json:"hits"`
	Misses      int64         `json:"misses"`
	Evictions   int64         `json:"evictions"`
	Expirations int64         `json:"expirations"`
}

// ResultCache maps normalized descriptions to resolutions with a TTL and a
// capacity bound. On insert at capacity the least-hit 20% of entries are
// evicted. A single mutex guards the map and the eviction bookkeeping.
type ResultCache struct {
	entries     map[string]*Entry
	now         func() time.Time
	ttl         time.Duration
	capacity    int
	hits        int64
	misses      int64
	evictions   int64
	expirations int64
	mu          sync.Mutex
}

// Option configures a ResultCache.
type Option func(*ResultCache)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *ResultCache) {
		c.now = now
	}
}

// New creates a cache. Non-positive ttl or capacity use the defaults.
func New(ttl time.Duration, capacity int, opts ...Option) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	c := &ResultCache{
		entries:  make(map[string]*Entry),
		now:      time.Now,
		ttl:      ttl,
		capacity: capacity,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key normalizes a description into a cache key.
func Key(description string) string {
	return strings.ToLower(strings.TrimSpace(description))
}

// Get returns the entry for a description and increments its hit count.
// Expired entries are deleted and reported as a miss.
func (c *ResultCache) Get(description string) (Entry, bool) {
	key := Key(description)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return Entry{}, false
	}

	if entry.CreatedAt.IsZero() || c.now().Sub(entry.CreatedAt) >= c.ttl {
		delete(c.entries, key)
		c.expirations++
		c.misses++
		return Entry{}, false
	}

	entry.HitCount++
	c.hits++
	return *entry, true
}

// Put stores a resolution for a description, evicting low-hit entries first
// when the cache is full.
func (c *ResultCache) Put(description string, value model.CachedResolution) {
	key := Key(description)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.removeExpiredLocked()
		if len(c.entries) >= c.capacity {
			c.evictLocked()
		}
	}

	c.entries[key] = &Entry{
		Value:     value,
		CreatedAt: c.now(),
		HitCount:  1,
	}
}

// Update replaces the value of a live entry, keeping its age and hit count.
// A missing or expired entry is stored as a fresh Put.
func (c *ResultCache) Update(description string, value model.CachedResolution) {
	key := Key(description)

	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && !entry.CreatedAt.IsZero() && c.now().Sub(entry.CreatedAt) < c.ttl {
		entry.Value = value
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.Put(description, value)
}

// evictLocked drops the lowest-hit 20% of entries. Ties go to the older
// entry, then to key order, so eviction is deterministic.
func (c *ResultCache) evictLocked() {
	type candidate struct {
		created time.Time
		key     string
		hits    int
	}

	candidates := make([]candidate, 0, len(c.entries))
	for key, entry := range c.entries {
		candidates = append(candidates, candidate{key: key, hits: entry.HitCount, created: entry.CreatedAt})
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.hits != b.hits {
			return a.hits < b.hits
		}
		if !a.created.Equal(b.created) {
			return a.created.Before(b.created)
		}
		return a.key < b.key
	})

	n := int(float64(c.capacity) * evictFraction)
	if n < 1 {
		n = 1
	}
	if n > len(candidates) {
		n = len(candidates)
	}
	for _, cand := range candidates[:n] {
		delete(c.entries, cand.key)
	}
	c.evictions += int64(n)
}

func (c *ResultCache) removeExpiredLocked() int {
	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if now.Sub(entry.CreatedAt) >= c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	c.expirations += int64(removed)
	return removed
}

// Sweep removes expired entries and returns how many were dropped.
func (c *ResultCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeExpiredLocked()
}

// Clear removes every entry. Counters are kept.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Entry)
}

// Len returns the number of entries, including any not yet swept.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats reports size, cumulative hit counts and eviction counters.
func (c *ResultCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	entryHits := 0
	for _, entry := range c.entries {
		entryHits += entry.HitCount
	}

	return Stats{
		Size:        len(c.entries),
		Capacity:    c.capacity,
		TTL:         c.ttl,
		EntryHits:   entryHits,
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
	}
}
