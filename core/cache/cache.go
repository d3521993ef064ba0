// Package cache memoizes detection results for the short window in which
// pointer-move events repeat the same query. Two backends share one
// contract: LRUCache, a deterministic bounded LRU with injected-clock
// TTL (the engine default), and RistrettoCache, an admission-policy
// cache for high-churn hosts. A cache is strictly an optimization: the
// engine must behave identically with a cold cache, latency aside.
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ductcad/snapengine/core/snap"
)

// ResultCache is the memoization contract the engine depends on.
type ResultCache interface {
	// Get retrieves a live cached result. Expired entries read as absent.
	Get(key string) (snap.Result, bool)

	// Set stores a result that expires after ttl.
	Set(key string, res snap.Result, ttl time.Duration)

	// Clear drops every entry. Called on any point-set or config
	// mutation, since cached distances are no longer valid.
	Clear()

	// Len returns the number of stored entries, expired or not.
	Len() int
}

// defaultCapacity bounds the LRU. Pointer traces revisit few distinct
// positions inside one TTL window, so a small cache is enough.
const defaultCapacity = 512

type entry struct {
	result    snap.Result
	expiresAt time.Time
}

// LRUCache is a bounded LRU with per-entry TTL checked against an
// injected clock. Lookups and stores are synchronous, so a Set is
// always visible to the next Get — the property the engine's
// determinism guarantee rests on.
type LRUCache struct {
	entries *lru.Cache[string, entry]
	clock   snap.Clock
}

// NewLRUCache returns an LRUCache with the default capacity.
func NewLRUCache(clock snap.Clock) *LRUCache {
	return NewLRUCacheWithCapacity(clock, defaultCapacity)
}

// NewLRUCacheWithCapacity returns an LRUCache holding at most capacity
// entries.
func NewLRUCacheWithCapacity(clock snap.Clock, capacity int) *LRUCache {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	entries, err := lru.New[string, entry](capacity)
	if err != nil {
		// lru.New only fails on non-positive size, which is
		// guarded above.
		panic(err)
	}
	return &LRUCache{entries: entries, clock: clock}
}

// Get retrieves a cached result, evicting it if expired.
func (c *LRUCache) Get(key string) (snap.Result, bool) {
	e, ok := c.entries.Get(key)
	if !ok {
		return snap.Result{}, false
	}
	if c.clock.Now().After(e.expiresAt) {
		c.entries.Remove(key)
		return snap.Result{}, false
	}
	return e.result, true
}

// Set stores a result with the given TTL.
func (c *LRUCache) Set(key string, res snap.Result, ttl time.Duration) {
	c.entries.Add(key, entry{
		result:    res,
		expiresAt: c.clock.Now().Add(ttl),
	})
}

// Clear drops all entries.
func (c *LRUCache) Clear() {
	c.entries.Purge()
}

// Len returns the number of stored entries.
func (c *LRUCache) Len() int {
	return c.entries.Len()
}
