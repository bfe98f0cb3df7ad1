package suggest

import (
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity bounds the cache when no capacity is configured.
const DefaultCapacity = 4096

// Key identifies one memoized query.
type Key struct {
	Text  string
	Limit int
}

// Cache is a fixed-capacity LRU table of computed suggestion lists with hit,
// miss and eviction counters.
type Cache struct {
	lru       *lru.Cache[Key, []Suggestion]
	capacity  int
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64

	// mu serializes writers so Add can tell a replace from an insert and
	// Purge is not counted as eviction.
	mu      sync.Mutex
	purging bool
}

// CacheStats is a point-in-time view of a Cache.
type CacheStats struct {
	Entries   int   `msgpack:"entries" json:"entries"`
	Capacity  int   `msgpack:"capacity" json:"capacity"`
	Hits      int64 `msgpack:"hits" json:"hits"`
	Misses    int64 `msgpack:"misses" json:"misses"`
	Evictions int64 `msgpack:"evictions" json:"evictions"`
}

// NewCache creates a cache holding at most capacity entries. A capacity below
// 1 selects DefaultCapacity.
func NewCache(capacity int) *Cache {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	c := &Cache{capacity: capacity}
	// size is always positive here, which is the only error lru reports
	c.lru, _ = lru.NewWithEvict[Key, []Suggestion](capacity, c.onEvict)
	return c
}

// onEvict runs inside Add or Purge while mu is held.
func (c *Cache) onEvict(key Key, _ []Suggestion) {
	if c.purging {
		return
	}
	c.evictions.Add(1)
	log.Debugf("Evicted %q (limit %d) from prediction cache", key.Text, key.Limit)
}

// Get returns the stored list for key and marks it most recently used.
func (c *Cache) Get(key Key) ([]Suggestion, bool) {
	value, ok := c.lru.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return value, true
}

// Add stores value under key, evicting the least recently used entry once
// the cache is full. It reports how many entries were added and evicted.
// Re-adding an existing key replaces its value; concurrent misses on one key
// may both compute and the later write wins.
func (c *Cache) Add(key Key, value []Suggestion) (added, evicted int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lru.Contains(key) {
		c.lru.Add(key, value)
		return 0, 0
	}
	if c.lru.Add(key, value) {
		evicted = 1
	}
	return 1, evicted
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Purge drops every entry and returns how many were removed. Counters are kept.
func (c *Cache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.lru.Len()
	c.purging = true
	c.lru.Purge()
	c.purging = false
	return n
}

func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Entries:   c.lru.Len(),
		Capacity:  c.capacity,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
