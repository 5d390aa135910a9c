// Package extractcache implements the process-wide bounded extraction
// cache (§4.3.9): a single map shared across runs, keyed by lowercased
// canonical-of-request URL, with clone-in/clone-out semantics so a
// caller's mutation of a returned article can never corrupt the cached
// entry. Adapted from the teacher's on-disk HTTPCache key/clone pattern,
// generalized to an in-memory, size- and TTL-bounded map as the spec
// requires (rather than a disk-backed conditional-request cache, which
// internal/cache.HTTPCache still provides one layer below, for raw HTTP
// bytes).
package extractcache

import (
	"strings"
	"sync"
	"time"

	"github.com/hyperifyio/retrievalcore/internal/model"
)

// DefaultMaxEntries bounds the cache when no explicit size is configured.
const DefaultMaxEntries = 2000

// sweepEvery triggers an eviction pass on every Nth call, per §4.3.9.
const sweepEvery = 50

type entry struct {
	article  model.NormalizedArticle
	storedAt time.Time
}

// Cache is safe for concurrent use by multiple extraction workers.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	maxEntries int
	ttl        time.Duration
	calls      int
	now        func() time.Time
}

// New constructs a cache with the given size bound and TTL. A zero
// maxEntries uses DefaultMaxEntries; a zero ttl disables expiry.
func New(maxEntries int, ttl time.Duration) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		entries:    make(map[string]entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Get returns a cloned article if present and unexpired.
func (c *Cache) Get(key string) (model.NormalizedArticle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := normalizeKey(key)
	e, ok := c.entries[k]
	if !ok {
		return model.NormalizedArticle{}, false
	}
	if c.ttl > 0 && c.now().Sub(e.storedAt) > c.ttl {
		delete(c.entries, k)
		return model.NormalizedArticle{}, false
	}
	return e.article.Clone(), true
}

// Put stores a cloned copy of article under key, and additionally under
// every alias key (the extracted canonical URL and any redirected URL),
// per §4.3.9. Every call counts toward the sweep cadence.
func (c *Cache) Put(key string, article model.NormalizedArticle, aliases ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := article.Clone()
	now := c.now()
	c.entries[normalizeKey(key)] = entry{article: stored, storedAt: now}
	for _, alias := range aliases {
		if alias == "" {
			continue
		}
		c.entries[normalizeKey(alias)] = entry{article: stored.Clone(), storedAt: now}
	}

	c.calls++
	if c.calls%sweepEvery == 0 {
		c.sweepLocked()
	}
	c.evictOverflowLocked()
}

// Len reports the current entry count, for tests and diagnostics.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) sweepLocked() {
	if c.ttl <= 0 {
		return
	}
	now := c.now()
	for k, e := range c.entries {
		if now.Sub(e.storedAt) > c.ttl {
			delete(c.entries, k)
		}
	}
}

func (c *Cache) evictOverflowLocked() {
	for len(c.entries) > c.maxEntries {
		oldestKey := ""
		var oldestAt time.Time
		first := true
		for k, e := range c.entries {
			if first || e.storedAt.Before(oldestAt) {
				oldestKey = k
				oldestAt = e.storedAt
				first = false
			}
		}
		if oldestKey == "" {
			return
		}
		delete(c.entries, oldestKey)
	}
}

