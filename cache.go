package canopy

// Cache is a memo table with an explicit build step. It counts builds so the
// "built once" contract can be observed.
//
// Cache is not safe for concurrent use; the engine is single-threaded.
type Cache[K comparable, V any] struct {
	data   map[K]V
	builds int
}

// NewCache creates an empty cache.
func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{data: make(map[K]V)}
}

// Load returns the cached value for key.
func (c *Cache[K, V]) Load(key K) (V, bool) {
	v, ok := c.data[key]
	return v, ok
}

// Store caches value under key.
func (c *Cache[K, V]) Store(key K, value V) {
	c.data[key] = value
}

// Delete drops key.
func (c *Cache[K, V]) Delete(key K) {
	delete(c.data, key)
}

// GetOrBuild returns the cached value or calls build and caches its result.
// Failed builds are not cached.
func (c *Cache[K, V]) GetOrBuild(key K, build func() (V, error)) (V, error) {
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	c.builds++
	v, err := build()
	if err != nil {
		var zero V
		return zero, err
	}
	c.data[key] = v
	return v, nil
}

// Range calls fn for each entry until fn returns false.
func (c *Cache[K, V]) Range(fn func(key K, value V) bool) {
	for k, v := range c.data {
		if !fn(k, v) {
			return
		}
	}
}

// Size returns the number of cached entries.
func (c *Cache[K, V]) Size() int {
	return len(c.data)
}

// Builds returns how many times GetOrBuild invoked its build function.
func (c *Cache[K, V]) Builds() int {
	return c.builds
}

// Clear drops every entry.
func (c *Cache[K, V]) Clear() {
	clear(c.data)
}
