package cache

import (
	"sync"
	"time"
)

// LRU is a size-bounded cache whose entries also expire after a fixed TTL.
// Recency is kept in an intrusive list: root.next is the most recent entry.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	entries  map[K]*entry[K, V]
	root     entry[K, V]
	now      func() time.Time

	hits   uint64
	misses uint64
}

type entry[K comparable, V any] struct {
	prev, next *entry[K, V]
	key        K
	value      V
	expiresAt  time.Time
}

// Stats is a point-in-time snapshot of cache activity.
type Stats struct {
	Hits   uint64
	Misses uint64
	Size   int
}

// HitRatio is hits over lookups, 0 before the first lookup.
func (s Stats) HitRatio() float64 {
	if total := s.Hits + s.Misses; total > 0 {
		return float64(s.Hits) / float64(total)
	}
	return 0
}

// NewLRU holds at most capacity entries (minimum 1), each for ttl.
func NewLRU[K comparable, V any](capacity int, ttl time.Duration) *LRU[K, V] {
	c := &LRU[K, V]{
		capacity: max(capacity, 1),
		ttl:      ttl,
		entries:  make(map[K]*entry[K, V]),
		now:      time.Now,
	}
	c.root.prev, c.root.next = &c.root, &c.root
	return c
}

// WithClock replaces the time source. Intended for tests.
func (c *LRU[K, V]) WithClock(now func() time.Time) *LRU[K, V] {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
	return c
}

func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if ok && c.now().After(e.expiresAt) {
		c.remove(e)
		ok = false
	}
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.unlink(e)
	c.pushFront(e)
	return e.value, true
}

// Set stores value under key, evicting the least recently used entry when full.
func (c *LRU[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	if e, ok := c.entries[key]; ok {
		e.value, e.expiresAt = value, expiresAt
		c.unlink(e)
		c.pushFront(e)
		return
	}

	e := &entry[K, V]{key: key, value: value, expiresAt: expiresAt}
	c.entries[key] = e
	c.pushFront(e)
	if len(c.entries) > c.capacity {
		c.remove(c.root.prev)
	}
}

func (c *LRU[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.remove(e)
	}
}

// CleanExpired removes all expired entries and returns how many it removed.
func (c *LRU[K, V]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for e := c.root.next; e != &c.root; {
		next := e.next
		if now.After(e.expiresAt) {
			c.remove(e)
			removed++
		}
		e = next
	}
	return removed
}

func (c *LRU[K, V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Size: len(c.entries)}
}

func (c *LRU[K, V]) pushFront(e *entry[K, V]) {
	e.prev, e.next = &c.root, c.root.next
	c.root.next.prev = e
	c.root.next = e
}

func (c *LRU[K, V]) unlink(e *entry[K, V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev, e.next = nil, nil
}

func (c *LRU[K, V]) remove(e *entry[K, V]) {
	c.unlink(e)
	delete(c.entries, e.key)
}
