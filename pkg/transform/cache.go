package transform

import (
	"hash/crc32"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheKey is (filePath, targetFormat) per §5 "Shared resources".
type cacheKey struct {
	path   string
	format Format
}

// entry mirrors the §3 TransformCacheEntry: a content fingerprint plus the
// transformed output. A cache hit is valid iff the stored hash equals the
// hash recomputed for the current request (invariant 1) — the cache never
// self-invalidates from watcher events.
type entry struct {
	sourceHash uint32
	output     string
}

// Cache is the transform cache. Reads/writes are serialized with a mutex;
// §5 notes no locking is strictly required under cooperative single
// threading, but this port runs one goroutine per in-flight request, so
// the mutex is load-bearing here, not decorative.
type Cache struct {
	mu  sync.Mutex
	lru *lru.Cache[cacheKey, entry]
}

// NewCache creates a transform cache holding up to size entries.
func NewCache(size int) *Cache {
	c, _ := lru.New[cacheKey, entry](size)
	return &Cache{lru: c}
}

// HashSource computes the 32-bit content fingerprint used as the cache
// validity key (§3).
func HashSource(src []byte) uint32 {
	return crc32.ChecksumIEEE(src)
}

// Lookup returns the cached output and true if the stored hash matches
// currentHash, else false.
func (c *Cache) Lookup(path string, format Format, currentHash uint32) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.lru.Get(cacheKey{path, format})
	if !ok || e.sourceHash != currentHash {
		return "", false
	}
	return e.output, true
}

// Store records a fresh transform result, overwriting any prior entry for
// (path, format). Overwrite is the only eviction mechanism besides LRU
// capacity (§3 Lifecycles).
func (c *Cache) Store(path string, format Format, sourceHash uint32, output string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(cacheKey{path, format}, entry{sourceHash: sourceHash, output: output})
}
