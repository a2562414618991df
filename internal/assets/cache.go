package assets

import "sync"

// Cache is an in-memory cache of decoded asset text.
type Cache struct {
	data map[string]string
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]string),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	text, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return text, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = text
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]string)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
