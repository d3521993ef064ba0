package cache

import (
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/ductcad/snapengine/core/snap"
)

const (
	ristrettoNumCounters = 1e5 // admission counters, ~10x expected entries
	ristrettoMaxCost     = 1e4 // one unit of cost per result
	ristrettoBufferItems = 64  // buffer items for async writes
)

// RistrettoCache backs the result cache with ristretto's admission
// policy. Writes are asynchronous, so a stored result may not be visible
// to the immediately following Get; hosts that need the strict
// determinism guarantee use LRUCache instead. Suitable for multi-layout
// precompute workers with high churn.
type RistrettoCache struct {
	cache  *ristretto.Cache
	mu     sync.RWMutex
	closed bool
}

// NewRistrettoCache creates a RistrettoCache.
func NewRistrettoCache() (*RistrettoCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: ristrettoNumCounters,
		MaxCost:     ristrettoMaxCost,
		BufferItems: ristrettoBufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &RistrettoCache{cache: c}, nil
}

// Get retrieves a cached result.
func (rc *RistrettoCache) Get(key string) (snap.Result, bool) {
	rc.mu.RLock()
	if rc.closed {
		rc.mu.RUnlock()
		return snap.Result{}, false
	}
	rc.mu.RUnlock()

	value, found := rc.cache.Get(key)
	if !found {
		return snap.Result{}, false
	}
	res, ok := value.(snap.Result)
	if !ok {
		return snap.Result{}, false
	}
	return res, true
}

// Set stores a result with the given TTL. Admission may reject the
// entry; that only costs a future recomputation.
func (rc *RistrettoCache) Set(key string, res snap.Result, ttl time.Duration) {
	rc.mu.RLock()
	if rc.closed {
		rc.mu.RUnlock()
		return
	}
	rc.mu.RUnlock()

	rc.cache.SetWithTTL(key, res, 1, ttl)
}

// Clear drops all entries.
func (rc *RistrettoCache) Clear() {
	rc.mu.RLock()
	if rc.closed {
		rc.mu.RUnlock()
		return
	}
	rc.mu.RUnlock()

	rc.cache.Clear()
}

// Len reports 0: ristretto does not expose an entry count, and the
// engine only uses Len for debug statistics.
func (rc *RistrettoCache) Len() int {
	return 0
}

// Wait blocks until pending writes are applied. Test hook.
func (rc *RistrettoCache) Wait() {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	if rc.closed {
		return
	}
	rc.cache.Wait()
}

// Close releases the cache's internal goroutines.
func (rc *RistrettoCache) Close() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.closed {
		return
	}
	rc.closed = true
	rc.cache.Close()
}
