package secrets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"semdex/internal/domain"
	"semdex/internal/port"
)

// DefaultTTL is how long a resolved secret stays cached, measured
// from resolution time regardless of which source supplied it.
const DefaultTTL = 5 * time.Minute

// Resolver resolves logical secret names against a primary vault
// source with fallback to static configuration, caching results with
// a TTL. Expiry is lazy, checked at read time; there is no background
// eviction.
type Resolver struct {
	mu       sync.RWMutex
	entries  map[string]cacheEntry
	primary  port.SecretSource
	fallback port.SecretSource
	ttl      time.Duration
	now      func() time.Time
}

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// NewResolver creates a resolver over a primary source and an
// optional fallback. A non-positive ttl selects DefaultTTL.
func NewResolver(primary, fallback port.SecretSource, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Resolver{
		entries:  make(map[string]cacheEntry),
		primary:  primary,
		fallback: fallback,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Resolve returns the value for a logical secret name. On a cache
// miss the primary source is queried; on primary failure or absence
// the fallback is tried. When neither yields a value the error wraps
// domain.ErrSecretNotFound — callers fail the one embedding request
// and may retry, since credentials can recover within the TTL window.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	now := r.now()
	r.mu.RUnlock()

	if ok && now.Before(entry.expiresAt) {
		return entry.value, nil
	}

	value, err := r.lookup(ctx, name)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	r.entries[name] = cacheEntry{value: value, expiresAt: r.now().Add(r.ttl)}
	r.mu.Unlock()

	return value, nil
}

// Fetch makes Resolver itself usable as a SecretSource.
func (r *Resolver) Fetch(ctx context.Context, name string) (string, error) {
	return r.Resolve(ctx, name)
}

func (r *Resolver) lookup(ctx context.Context, name string) (string, error) {
	var primaryErr error
	if r.primary != nil {
		value, err := r.primary.Fetch(ctx, name)
		if err == nil {
			return value, nil
		}
		primaryErr = err
	}

	if r.fallback != nil {
		value, err := r.fallback.Fetch(ctx, name)
		if err == nil {
			return value, nil
		}
	}

	if primaryErr != nil {
		return "", fmt.Errorf("%w: %s (primary: %v)", domain.ErrSecretNotFound, name, primaryErr)
	}
	return "", fmt.Errorf("%w: %s", domain.ErrSecretNotFound, name)
}

// Clear purges all cached entries immediately. Used on credential
// rotation so fresh values are fetched on next resolution.
func (r *Resolver) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]cacheEntry)
}

// Forget drops a single cached entry.
func (r *Resolver) Forget(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

// Size returns the number of cached entries, expired ones included
// until they are read.
func (r *Resolver) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
