// Package cache provides a small thread-safe LRU for memoizing similarity
// scores between repeated lookups.
package cache

import (
	"container/list"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// DefaultSize is used when a non-positive size is requested.
const DefaultSize = 4096

// LRU is a thread-safe least-recently-used cache of scores keyed by hash.
type LRU struct {
	maxSize int
	mu      sync.Mutex
	items   map[uint64]*list.Element
	order   *list.List
}

type entry struct {
	key   uint64
	value float64
}

// NewLRU creates a new LRU cache holding at most maxSize entries.
func NewLRU(maxSize int) *LRU {
	if maxSize <= 0 {
		maxSize = DefaultSize
	}
	return &LRU{
		maxSize: maxSize,
		items:   make(map[uint64]*list.Element),
		order:   list.New(),
	}
}

// Key hashes parts into a cache key. Parts are separated by a zero byte so
// ("ab", "c") and ("a", "bc") produce different keys.
func Key(parts ...string) uint64 {
	d := xxhash.New()
	for i, p := range parts {
		if i > 0 {
			_, _ = d.Write([]byte{0})
		}
		_, _ = d.WriteString(p)
	}
	return d.Sum64()
}

// Get retrieves a value and marks it as recently used.
func (c *LRU) Get(key uint64) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		return elem.Value.(*entry).value, true
	}
	return 0, false
}

// Set adds or updates a value, evicting the least recently used entry when full.
func (c *LRU) Set(key uint64, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*entry).value = value
		return
	}

	c.items[key] = c.order.PushFront(&entry{key: key, value: value})
	if c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*entry).key)
	}
}

// Len returns the number of cached entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
