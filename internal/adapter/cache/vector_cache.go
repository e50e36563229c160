package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"semdex/internal/domain"
)

// VectorCache memoizes canonical vectors for repeated identical text,
// keyed by provider and content hash. Entries expire after a TTL;
// invalidation is lazy, checked at read time. A size bound with LRU
// eviction keeps memory flat under re-ingestion workloads.
type VectorCache struct {
	mu      sync.RWMutex
	entries map[string]*vectorEntry
	order   []string
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

type vectorEntry struct {
	vector    domain.EmbeddingVector
	timestamp time.Time
}

// NewVectorCache creates a vector cache holding at most maxSize
// entries, each valid for ttl after insertion.
func NewVectorCache(maxSize int, ttl time.Duration) *VectorCache {
	if maxSize <= 0 {
		maxSize = 1024
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &VectorCache{
		entries: make(map[string]*vectorEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

func vectorKey(providerID, text string) string {
	h := sha256.New()
	h.Write([]byte(providerID))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// Get returns the cached vector for (providerID, text) if present and
// not expired.
func (c *VectorCache) Get(providerID, text string) (domain.EmbeddingVector, bool) {
	key := vectorKey(providerID, text)

	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		return domain.EmbeddingVector{}, false
	}

	// Re-check under the write lock: Invalidate or eviction may have
	// removed the entry after the read lock was released, and touching
	// c.order for a key with no map entry would drift the LRU bookkeeping.
	if c.now().Sub(entry.timestamp) > c.ttl {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur == entry {
			delete(c.entries, key)
			c.removeFromOrder(key)
		}
		c.mu.Unlock()
		return domain.EmbeddingVector{}, false
	}

	c.mu.Lock()
	if _, ok := c.entries[key]; ok {
		c.moveToEnd(key)
	}
	c.mu.Unlock()

	return copyVector(entry.vector), true
}

// Put stores a vector for (providerID, text), evicting the least
// recently used entry when the cache is full.
func (c *VectorCache) Put(providerID, text string, vector domain.EmbeddingVector) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := vectorKey(providerID, text)
	stored := copyVector(vector)

	if _, exists := c.entries[key]; exists {
		c.entries[key] = &vectorEntry{vector: stored, timestamp: c.now()}
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = &vectorEntry{vector: stored, timestamp: c.now()}
	c.order = append(c.order, key)
}

// Invalidate drops all entries immediately.
func (c *VectorCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*vectorEntry)
	c.order = c.order[:0]
}

// Size returns the number of live entries, expired ones included
// until they are read.
func (c *VectorCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *VectorCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *VectorCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *VectorCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func copyVector(v domain.EmbeddingVector) domain.EmbeddingVector {
	values := make([]float32, len(v.Values))
	copy(values, v.Values)
	return domain.EmbeddingVector{Values: values, Provenance: v.Provenance}
}
