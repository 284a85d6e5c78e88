package pattern

import "sync"

// Cache memoizes compiled patterns by source and options. Failed
// compilations are not cached.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Pattern
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Pattern)}
}

// Compile returns the cached pattern for source and opts, compiling it on
// first use.
func (c *Cache) Compile(source string, opts Options) (*Pattern, error) {
	key := source + "\x00" + opts.key()
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.entries[key]; ok {
		return p, nil
	}
	p, err := Compile(source, opts)
	if err != nil {
		return nil, err
	}
	c.entries[key] = p
	return p, nil
}

// Len reports how many patterns are cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
