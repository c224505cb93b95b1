// Package cache provides a keyed store whose create-on-miss behaviour is an
// explicit operation instead of a side effect of a getter.
package cache

// Cache maps keys to lazily created values. Iteration order is insertion
// order so save files are stable.
type Cache[K comparable, V any] struct {
	items map[K]V
	order []K
}

// New creates an empty cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{items: map[K]V{}}
}

// Get returns the value for key without creating it.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, ok := c.items[key]
	return v, ok
}

// GetOrInsertWith returns the cached value for key, calling factory to
// create and store it on a miss. A factory error leaves the cache unchanged.
func (c *Cache[K, V]) GetOrInsertWith(key K, factory func(K) (V, error)) (V, error) {
	if v, ok := c.items[key]; ok {
		return v, nil
	}
	v, err := factory(key)
	if err != nil {
		var zero V
		return zero, err
	}
	c.Insert(key, v)
	return v, nil
}

// Insert stores value under key, replacing any previous value.
func (c *Cache[K, V]) Insert(key K, value V) {
	if _, ok := c.items[key]; !ok {
		c.order = append(c.order, key)
	}
	c.items[key] = value
}

// Len returns the number of cached values.
func (c *Cache[K, V]) Len() int { return len(c.items) }

// Keys returns the keys in insertion order.
func (c *Cache[K, V]) Keys() []K {
	out := make([]K, len(c.order))
	copy(out, c.order)
	return out
}

// Each calls fn for every entry in insertion order.
func (c *Cache[K, V]) Each(fn func(K, V)) {
	for _, k := range c.order {
		fn(k, c.items[k])
	}
}

// Clear removes every entry.
func (c *Cache[K, V]) Clear() {
	c.items = map[K]V{}
	c.order = nil
}
