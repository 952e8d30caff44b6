// Package rcache caches detection reports so that repeated runs against the
// same dataset with the same configuration skip the block-sweep entirely.
package rcache

import (
	"container/list"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/umad/orca/pkg/detect"
)

// CacheKey represents a unique key for a cached run result.
type CacheKey string

// LRUCache implements a thread-safe LRU (Least Recently Used) cache
type LRUCache struct {
	capacity int
	ttl      time.Duration // Time-to-live for cache entries

	mu    sync.RWMutex
	cache map[CacheKey]*list.Element
	lru   *list.List

	// Statistics
	hits   int64
	misses int64
}

// cacheEntry represents a single entry in the cache
type cacheEntry struct {
	key       CacheKey
	value     interface{}
	expiresAt time.Time
}

// NewLRUCache creates a new LRU cache with the given capacity
// capacity: maximum number of items to store
// ttl: time-to-live for entries (0 = no expiration)
func NewLRUCache(capacity int, ttl time.Duration) *LRUCache {
	return &LRUCache{
		capacity: capacity,
		ttl:      ttl,
		cache:    make(map[CacheKey]*list.Element, capacity),
		lru:      list.New(),
	}
}

// Get retrieves a value from the cache
// Returns (value, true) if found, (nil, false) if not found or expired
func (c *LRUCache) Get(key CacheKey) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.cache[key]
	if !exists {
		c.misses++
		return nil, false
	}

	entry := elem.Value.(*cacheEntry)

	// Check if expired
	if c.ttl > 0 && time.Now().After(entry.expiresAt) {
		c.removeElement(elem)
		c.misses++
		return nil, false
	}

	// Move to front (most recently used)
	c.lru.MoveToFront(elem)
	c.hits++

	return entry.value, true
}

// Put adds or updates a value in the cache
func (c *LRUCache) Put(key CacheKey, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Check if key already exists
	if elem, exists := c.cache[key]; exists {
		entry := elem.Value.(*cacheEntry)
		entry.value = value
		if c.ttl > 0 {
			entry.expiresAt = time.Now().Add(c.ttl)
		}
		c.lru.MoveToFront(elem)
		return
	}

	entry := &cacheEntry{
		key:   key,
		value: value,
	}
	if c.ttl > 0 {
		entry.expiresAt = time.Now().Add(c.ttl)
	}

	elem := c.lru.PushFront(entry)
	c.cache[key] = elem

	if c.lru.Len() > c.capacity {
		c.evictOldest()
	}
}

// Invalidate removes a specific key from the cache
func (c *LRUCache) Invalidate(key CacheKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.cache[key]; exists {
		c.removeElement(elem)
	}
}

// Clear removes all entries from the cache
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[CacheKey]*list.Element, c.capacity)
	c.lru.Init()
	c.hits = 0
	c.misses = 0
}

// Size returns the current number of items in the cache
func (c *LRUCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lru.Len()
}

// Stats returns cache statistics
func (c *LRUCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.hits + c.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	return CacheStats{
		Hits:    c.hits,
		Misses:  c.misses,
		Size:    c.lru.Len(),
		HitRate: hitRate,
	}
}

// evictOldest removes the least recently used item
func (c *LRUCache) evictOldest() {
	elem := c.lru.Back()
	if elem != nil {
		c.removeElement(elem)
	}
}

// removeElement removes an element from the cache
func (c *LRUCache) removeElement(elem *list.Element) {
	c.lru.Remove(elem)
	entry := elem.Value.(*cacheEntry)
	delete(c.cache, entry.key)
}

// CacheStats holds cache performance statistics
type CacheStats struct {
	Hits    int64
	Misses  int64
	Size    int
	HitRate float64
}

// ResultCache wraps an LRU cache specifically for detection run results.
type ResultCache struct {
	cache *LRUCache
}

// NewResultCache creates a new detection result cache.
func NewResultCache(capacity int, ttl time.Duration) *ResultCache {
	return &ResultCache{
		cache: NewLRUCache(capacity, ttl),
	}
}

// GenerateRunKey creates a cache key from a dataset path and the detector
// configuration the run was executed with. Two runs with identical inputs
// hash to the same key regardless of call order.
func GenerateRunKey(datasetPath string, cfg detect.Config) CacheKey {
	h := sha256.New()
	h.Write([]byte(datasetPath))
	binary.Write(h, binary.LittleEndian, int32(cfg.N))
	binary.Write(h, binary.LittleEndian, int32(cfg.K))
	binary.Write(h, binary.LittleEndian, int32(cfg.BlockSize))
	binary.Write(h, binary.LittleEndian, int32(cfg.NumPivots))
	binary.Write(h, binary.LittleEndian, int32(cfg.Kind))
	binary.Write(h, binary.LittleEndian, cfg.HiddenCandidates)

	return CacheKey(fmt.Sprintf("run:%x", h.Sum(nil)[:16]))
}

// GetReport retrieves a cached detection report.
func (rc *ResultCache) GetReport(key CacheKey) (*detect.Report, bool) {
	value, found := rc.cache.Get(key)
	if !found {
		return nil, false
	}

	report, ok := value.(*detect.Report)
	if !ok {
		rc.cache.Invalidate(key)
		return nil, false
	}

	return report, true
}

// PutReport stores a detection report in the cache.
func (rc *ResultCache) PutReport(key CacheKey, report *detect.Report) {
	rc.cache.Put(key, report)
}

// Clear removes all cached results.
func (rc *ResultCache) Clear() {
	rc.cache.Clear()
}

// Stats returns cache statistics.
func (rc *ResultCache) Stats() CacheStats {
	return rc.cache.Stats()
}

// InvalidateAll removes all cached results (alias for Clear).
func (rc *ResultCache) InvalidateAll() {
	rc.Clear()
}

// Size returns the number of cached entries.
func (rc *ResultCache) Size() int {
	return rc.cache.Size()
}

// CachedDetector wraps detect.Detect with result caching.
type CachedDetector struct {
	cache *ResultCache
}

// NewCachedDetector creates a detector wrapper with run-result caching.
func NewCachedDetector(cacheCapacity int, cacheTTL time.Duration) *CachedDetector {
	return &CachedDetector{
		cache: NewResultCache(cacheCapacity, cacheTTL),
	}
}

// Detect runs detection, serving a cached report when the dataset path and
// configuration match a prior call.
func (cd *CachedDetector) Detect(datasetPath string, size int, dist detect.DistanceFunc, cfg detect.Config) (*detect.Report, error) {
	key := GenerateRunKey(datasetPath, cfg)

	if report, found := cd.cache.GetReport(key); found {
		return report, nil
	}

	report, err := detect.Detect(size, dist, cfg)
	if err != nil {
		return nil, err
	}

	cd.cache.PutReport(key, report)
	return report, nil
}

// InvalidateCache clears the result cache.
func (cd *CachedDetector) InvalidateCache() {
	cd.cache.Clear()
}

// CacheStats returns cache performance statistics.
func (cd *CachedDetector) CacheStats() CacheStats {
	return cd.cache.Stats()
}
