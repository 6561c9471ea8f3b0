package llm

import (
	"sync"
	"time"

	"github.com/Veraticus/the-files-must-flow/internal/model"
)

// cacheEntry represents a cached purpose classification.
type cacheEntry struct {
	expiry time.Time
	result model.ClassificationResult
}

// purposeCache provides thread-safe caching of backend responses keyed by
// file path. Re-running over a partially organized folder then skips files
// the backend already answered for.
type purposeCache struct {
	entries map[string]cacheEntry
	stopCh  chan struct{}
	ttl     time.Duration
	mu      sync.RWMutex
}

// newPurposeCache creates a new cache with the specified TTL.
func newPurposeCache(ttl time.Duration) *purposeCache {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}

	cache := &purposeCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

// get retrieves a result from the cache if it exists and hasn't expired.
func (c *purposeCache) get(key string) (model.ClassificationResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || time.Now().After(entry.expiry) {
		return model.ClassificationResult{}, false
	}

	return entry.result, true
}

// set stores a result in the cache.
func (c *purposeCache) set(key string, result model.ClassificationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		result: result,
		expiry: time.Now().Add(c.ttl),
	}
}

// cleanup periodically removes expired entries.
func (c *purposeCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.After(entry.expiry) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// Close stops the cleanup goroutine.
func (c *purposeCache) Close() {
	close(c.stopCh)
}
