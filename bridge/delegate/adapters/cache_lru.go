package adapters

import (
	"sync"
	"time"

	ports "github.com/codexbridge/codex-bridge/bridge/delegate/ports"
)

// LRUCache implements a bounded LRU result cache with a fixed TTL. Capacity
// and TTL are set at construction and never change for the cache's lifetime.
type LRUCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*cacheItem
	head     *cacheItem
	tail     *cacheItem

	hits      int64
	misses    int64
	evictions int64
}

type cacheItem struct {
	key       string
	dir       string
	value     string
	expiresAt time.Time
	prev      *cacheItem
	next      *cacheItem
}

// NewLRUCache creates a cache holding at most capacity entries, each living
// for ttl after insertion.
func NewLRUCache(capacity int, ttl time.Duration) *LRUCache {
	return &LRUCache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*cacheItem),
	}
}

// Get retrieves the value for key. An expired entry is removed on touch and
// reported as a miss; a live entry becomes the most recently used.
func (c *LRUCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.items[key]
	if !exists {
		c.misses++
		return "", false
	}

	if time.Now().After(item.expiresAt) {
		c.removeItem(item)
		delete(c.items, key)
		c.misses++
		return "", false
	}

	c.moveToFront(item)
	c.hits++
	return item.value, true
}

// Put stores value under key. Overwriting an existing key refreshes its TTL
// and recency; inserting past capacity evicts exactly one LRU entry.
func (c *LRUCache) Put(key, dir, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(c.ttl)

	if item, exists := c.items[key]; exists {
		item.value = value
		item.dir = dir
		item.expiresAt = expiresAt
		c.moveToFront(item)
		return
	}

	item := &cacheItem{
		key:       key,
		dir:       dir,
		value:     value,
		expiresAt: expiresAt,
	}
	c.addToFront(item)
	c.items[key] = item

	if len(c.items) > c.capacity {
		c.evictLRU()
	}
}

// PurgeExpired removes every entry past its TTL and reports the count.
func (c *LRUCache) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	purged := 0
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			c.removeItem(item)
			delete(c.items, key)
			purged++
		}
	}
	return purged
}

// Clear empties the cache and reports how many entries were dropped.
func (c *LRUCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := len(c.items)
	c.items = make(map[string]*cacheItem)
	c.head = nil
	c.tail = nil
	return dropped
}

// InvalidateDir drops every entry recorded against dir.
func (c *LRUCache) InvalidateDir(dir string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for key, item := range c.items {
		if item.dir == dir {
			c.removeItem(item)
			delete(c.items, key)
			dropped++
		}
	}
	return dropped
}

// Stats reports occupancy and counters without mutating the cache; entries
// that have expired but not yet been touched still count as occupants.
func (c *LRUCache) Stats() ports.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	expired := 0
	for _, item := range c.items {
		if now.After(item.expiresAt) {
			expired++
		}
	}

	return ports.CacheStats{
		Entries:    len(c.items),
		Expired:    expired,
		MaxEntries: c.capacity,
		TTLSeconds: int64(c.ttl / time.Second),
		Hits:       c.hits,
		Misses:     c.misses,
		Evictions:  c.evictions,
	}
}

// moveToFront moves an item to the front of the LRU list.
func (c *LRUCache) moveToFront(item *cacheItem) {
	if item == c.head {
		return
	}
	c.removeItem(item)
	c.addToFront(item)
}

// addToFront adds an item to the front of the LRU list.
func (c *LRUCache) addToFront(item *cacheItem) {
	item.next = c.head
	item.prev = nil

	if c.head != nil {
		c.head.prev = item
	}
	c.head = item

	if c.tail == nil {
		c.tail = item
	}
}

// removeItem unlinks an item from the LRU list.
func (c *LRUCache) removeItem(item *cacheItem) {
	if item.prev != nil {
		item.prev.next = item.next
	} else {
		c.head = item.next
	}

	if item.next != nil {
		item.next.prev = item.prev
	} else {
		c.tail = item.prev
	}

	item.prev = nil
	item.next = nil
}

// evictLRU removes the least recently used item.
func (c *LRUCache) evictLRU() {
	if c.tail == nil {
		return
	}
	item := c.tail
	c.removeItem(item)
	delete(c.items, item.key)
	c.evictions++
}

// Ensure LRUCache implements the ResultCache interface.
var _ ports.ResultCache = (*LRUCache)(nil)
