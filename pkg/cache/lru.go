package cache

import (
	"container/list"
	"sync"
	"time"
)

type entry[K comparable, V any] struct {
	key        K
	value      V
	expiration time.Time
}

// LRU is a thread-safe fixed-capacity cache with optional per-entry TTL.
// A zero TTL means entries never expire.
type LRU[K comparable, V any] struct {
	capacity int
	ttl      time.Duration
	ll       *list.List
	items    map[K]*list.Element
	lock     sync.Mutex
}

// NewLRU creates a cache holding at most capacity entries.
func NewLRU[K comparable, V any](capacity int, ttl time.Duration) *LRU[K, V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRU[K, V]{
		capacity: capacity,
		ttl:      ttl,
		ll:       list.New(),
		items:    make(map[K]*list.Element),
	}
}

// Get returns the cached value for key, if present and not expired.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}

	ent := el.Value.(*entry[K, V])
	if c.ttl > 0 && time.Now().After(ent.expiration) {
		c.ll.Remove(el)
		delete(c.items, key)
		return zero, false
	}

	c.ll.MoveToFront(el)
	return ent.value, true
}

// Set inserts or replaces the value for key, evicting the least recently
// used entry when the cache is full.
func (c *LRU[K, V]) Set(key K, value V) {
	c.lock.Lock()
	defer c.lock.Unlock()

	expiration := time.Time{}
	if c.ttl > 0 {
		expiration = time.Now().Add(c.ttl)
	}

	if el, ok := c.items[key]; ok {
		ent := el.Value.(*entry[K, V])
		ent.value = value
		ent.expiration = expiration
		c.ll.MoveToFront(el)
		return
	}

	el := c.ll.PushFront(&entry[K, V]{key: key, value: value, expiration: expiration})
	c.items[key] = el

	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*entry[K, V]).key)
		}
	}
}

// Len reports the number of entries currently cached, including expired
// ones that have not been touched yet.
func (c *LRU[K, V]) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.ll.Len()
}
