package cache

import (
	"sync"
	"time"
)

// DefaultSweepInterval is used when [New] is given a non-positive sweep
// interval.
const DefaultSweepInterval = 10 * time.Minute

// IdentityCache is a process-wide TTL map from user id to a cached identity
// snapshot. It is an explicitly owned component: construct one per engine
// (or per test) with [New] and inject it; there is no package singleton.
//
// All operations are plain map operations under a mutex and never block on
// I/O. Expiry is self-healing: Get deletes an over-age entry on the spot
// instead of merely filtering it, so the background sweep is purely a
// memory bound, not a correctness mechanism.
type IdentityCache struct {
	mu      sync.Mutex
	entries map[string]Entry
	ttl     time.Duration

	sweepInterval time.Duration
	stop          chan struct{}
	stopOnce      sync.Once
}

// New creates an [IdentityCache] with the given entry TTL and starts the
// background sweeper on sweepInterval. A non-positive sweepInterval falls
// back to [DefaultSweepInterval]; time.NewTicker panics on it otherwise.
// Call [IdentityCache.Close] to stop the sweeper.
func New(ttl, sweepInterval time.Duration) *IdentityCache {
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	c := &IdentityCache{
		entries:       make(map[string]Entry),
		ttl:           ttl,
		sweepInterval: sweepInterval,
		stop:          make(chan struct{}),
	}
	go c.sweepLoop()
	return c
}

// Get returns the entry for id, or a miss. An entry whose age has reached
// the TTL is deleted and reported as a miss.
func (c *IdentityCache) Get(id string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[id]
	if !ok {
		return Entry{}, false
	}
	if time.Since(entry.CachedAt) >= c.ttl {
		delete(c.entries, id)
		return Entry{}, false
	}
	return entry, true
}

// Set stores identity under its id, overwriting unconditionally.
func (c *IdentityCache) Set(id string, identity Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[id] = Entry{
		Identity:          identity,
		CachedAt:          time.Now(),
		ActiveAtCacheTime: identity.IsActive,
	}
}

// Invalidate removes the entry for id. Idempotent.
func (c *IdentityCache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, id)
}

// InvalidateAll clears the cache. Intended for emergency consistency
// resets, not the hot path.
func (c *IdentityCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Entry)
}

// Len reports the current entry count, expired entries included.
func (c *IdentityCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Close stops the background sweeper. Idempotent.
func (c *IdentityCache) Close() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *IdentityCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for id, entry := range c.entries {
		if now.Sub(entry.CachedAt) >= c.ttl {
			delete(c.entries, id)
		}
	}
}

func (c *IdentityCache) sweepLoop() {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}
