package cache

import (
	"context"
	"sync"
)

// ProviderCache memoizes expensive provider initialization, such as
// loading a local model. At most one initialization runs per provider
// ID per process; concurrent first callers wait on the single in-flight
// load instead of starting their own.
type ProviderCache struct {
	mu      sync.Mutex
	entries map[string]*initEntry
}

type initEntry struct {
	done   chan struct{}
	handle any
	err    error
}

// NewProviderCache creates an empty ProviderCache.
func NewProviderCache() *ProviderCache {
	return &ProviderCache{
		entries: make(map[string]*initEntry),
	}
}

// GetOrInit returns the cached handle for providerID, initializing it
// with init on first use. Initialization is detached from the calling
// context: a caller that cancels stops waiting, but the load runs to
// completion and is cached for subsequent callers. A failed load is
// forgotten so a later call can retry.
func (c *ProviderCache) GetOrInit(ctx context.Context, providerID string, init func() (any, error)) (any, error) {
	c.mu.Lock()
	e, ok := c.entries[providerID]
	if !ok {
		e = &initEntry{done: make(chan struct{})}
		c.entries[providerID] = e
		c.mu.Unlock()

		go func() {
			e.handle, e.err = init()
			if e.err != nil {
				// Drop only our own entry: Forget may have already
				// replaced it with a newer in-flight load.
				c.mu.Lock()
				if cur, ok := c.entries[providerID]; ok && cur == e {
					delete(c.entries, providerID)
				}
				c.mu.Unlock()
			}
			close(e.done)
		}()
	} else {
		c.mu.Unlock()
	}

	select {
	case <-e.done:
		return e.handle, e.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Forget drops the cached handle for providerID, forcing the next
// GetOrInit to re-run initialization.
func (c *ProviderCache) Forget(providerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, providerID)
}

// Size returns the number of cached or in-flight entries.
func (c *ProviderCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
