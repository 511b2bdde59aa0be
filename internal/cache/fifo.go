// Package cache provides the bounded memoization layer in front of search and
// content resolution.
package cache

// DefaultCapacity is the entry bound used when none is configured.
const DefaultCapacity = 50

// FIFO is a fixed-capacity map that evicts the oldest inserted key once the
// capacity is exceeded. Reads and overwrites do not refresh a key's age.
type FIFO[K comparable, V any] struct {
	capacity int
	items    map[K]V
	order    []K
}

// NewFIFO returns an empty cache. Non-positive capacity selects DefaultCapacity.
func NewFIFO[K comparable, V any](capacity int) *FIFO[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &FIFO[K, V]{
		capacity: capacity,
		items:    make(map[K]V, capacity),
		order:    make([]K, 0, capacity),
	}
}

// Get returns the value cached under k.
func (c *FIFO[K, V]) Get(k K) (V, bool) {
	v, ok := c.items[k]
	return v, ok
}

// Set stores v under k. Overwriting keeps the original insertion position.
// It returns the evicted key and true when an eviction happened.
func (c *FIFO[K, V]) Set(k K, v V) (evicted K, ok bool) {
	if _, exists := c.items[k]; exists {
		c.items[k] = v
		return evicted, false
	}
	c.items[k] = v
	c.order = append(c.order, k)
	if len(c.order) > c.capacity {
		evicted = c.order[0]
		delete(c.items, evicted)
		c.order = append(c.order[:0], c.order[1:]...)
		return evicted, true
	}
	return evicted, false
}

// Delete removes k if present.
func (c *FIFO[K, V]) Delete(k K) {
	if _, ok := c.items[k]; !ok {
		return
	}
	delete(c.items, k)
	for i, o := range c.order {
		if o == k {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of cached keys.
func (c *FIFO[K, V]) Len() int { return len(c.items) }

// Cap returns the capacity.
func (c *FIFO[K, V]) Cap() int { return c.capacity }

// Keys returns the cached keys oldest first.
func (c *FIFO[K, V]) Keys() []K { return append([]K(nil), c.order...) }

// Clear empties the cache.
func (c *FIFO[K, V]) Clear() {
	clear(c.items)
	c.order = c.order[:0]
}
