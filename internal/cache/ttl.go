// internal/cache/ttl.go
//
// Tiny LRU cache with per-entry expiry.  Used by the ownership verifier to
// hold the canonical hostname's address set between verifications so every
// unauthenticated request to an unverified domain does not re-resolve our
// own DDNS name.  No external deps; good for a few thousand entries.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// TTL is a least-recently-used cache whose entries expire after a fixed
// duration.  Safe for concurrent use.
type TTL struct {
	mu   sync.Mutex
	cap  int
	ttl  time.Duration
	ll   *list.List
	dict map[string]*list.Element
}

type pair struct {
	key string
	val any
	exp time.Time
}

// NewTTL returns a cache with the given capacity and entry lifetime.
// Panics on cap < 1.
func NewTTL(capacity int, ttl time.Duration) *TTL {
	if capacity < 1 {
		panic("cache: capacity must be ≥1")
	}
	return &TTL{
		cap:  capacity,
		ttl:  ttl,
		ll:   list.New(),
		dict: make(map[string]*list.Element, capacity),
	}
}

// Get retrieves a live value and marks it MRU.  Expired entries are
// removed on access and reported as misses.
func (c *TTL) Get(key string) (val any, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ele, hit := c.dict[key]
	if !hit {
		return nil, false
	}
	p := ele.Value.(pair)
	if time.Now().After(p.exp) {
		c.ll.Remove(ele)
		delete(c.dict, key)
		return nil, false
	}
	c.ll.MoveToFront(ele)
	return p.val, true
}

// Add inserts or refreshes a value, restarting its lifetime.
func (c *TTL) Add(key string, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	exp := time.Now().Add(c.ttl)
	if ele, hit := c.dict[key]; hit {
		ele.Value = pair{key, val, exp}
		c.ll.MoveToFront(ele)
		return
	}
	ele := c.ll.PushFront(pair{key, val, exp})
	c.dict[key] = ele
	if c.ll.Len() > c.cap {
		last := c.ll.Back()
		c.ll.Remove(last)
		delete(c.dict, last.Value.(pair).key)
	}
}

// Len reports current size, counting not-yet-evicted expired entries.
func (c *TTL) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
