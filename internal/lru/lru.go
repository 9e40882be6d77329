package lru

import (
	"container/list"
	"sync"
	"time"
)

// Cache is a thread-safe, capacity-bounded least-recently-used cache with
// optional time-to-live expiry. When the cache is full the least-recently-used
// entry is evicted; entries older than the TTL are dropped on read.
//
// Usage:
//
//	cache := lru.NewCache[string, *color.Value](512, 30*time.Second)
//	cache.Put("--brand:file:///a.css", v)
//	if v, ok := cache.Get("--brand:file:///a.css"); ok { ... }
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration // zero disables expiry
	items    map[K]*list.Element
	order    *list.List // front = most-recently used
}

type entry[K comparable, V any] struct {
	key      K
	value    V
	storedAt time.Time
}

// NewCache creates a cache with the given capacity and TTL.
// Capacity must be >= 1; values <= 0 are normalised to 1.
// A zero or negative ttl disables expiry.
func NewCache[K comparable, V any](capacity int, ttl time.Duration) *Cache[K, V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache[K, V]{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
	}
}

// Get returns the cached value and true if the key exists and has not
// expired. A hit moves the entry to the front (most-recently used); an
// expired entry is removed and reported as a miss.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}

	ent := el.Value.(*entry[K, V])
	if c.expired(ent) {
		c.removeLocked(el)
		var zero V
		return zero, false
	}

	c.order.MoveToFront(el)
	return ent.value, true
}

// Put inserts or updates a key/value pair, refreshing its TTL timestamp.
// If the cache is at capacity the least-recently-used entry is evicted first.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		ent := el.Value.(*entry[K, V])
		ent.value = value
		ent.storedAt = time.Now()
		return
	}

	if c.order.Len() >= c.capacity {
		c.evictLeastRecentLocked()
	}

	el := c.order.PushFront(&entry[K, V]{key: key, value: value, storedAt: time.Now()})
	c.items[key] = el
}

// Evict removes a specific key. It is a no-op if the key does not exist.
func (c *Cache[K, V]) Evict(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeLocked(el)
	}
}

// EvictWhere removes every entry whose key satisfies pred and returns the
// number of entries removed. Used to invalidate all cached results tied to
// one document URI without clearing unrelated entries.
func (c *Cache[K, V]) EvictWhere(pred func(K) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var doomed []*list.Element
	for key, el := range c.items {
		if pred(key) {
			doomed = append(doomed, el)
		}
	}
	for _, el := range doomed {
		c.removeLocked(el)
	}
	return len(doomed)
}

// Len returns the current number of items, including any not-yet-collected
// expired entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Cap returns the configured maximum capacity.
func (c *Cache[K, V]) Cap() int {
	return c.capacity
}

// Keys returns all keys currently in the cache.
func (c *Cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	return keys
}

// Clear removes all items from the cache.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[K]*list.Element, c.capacity)
}

func (c *Cache[K, V]) expired(ent *entry[K, V]) bool {
	return c.ttl > 0 && time.Since(ent.storedAt) > c.ttl
}

// removeLocked removes the element from both the order list and the index.
// Caller must hold c.mu.
func (c *Cache[K, V]) removeLocked(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry[K, V]).key)
}

// evictLeastRecentLocked removes the back (least-recently-used) element.
// Caller must hold c.mu.
func (c *Cache[K, V]) evictLeastRecentLocked() {
	back := c.order.Back()
	if back == nil {
		return
	}
	c.removeLocked(back)
}
