package jit

import (
	"sync"
	"sync/atomic"

	"jsouthworth.net/go/immutable/hashmap"
)

// Cache maps fingerprint keys to compiled programs. Lookups are
// lock-free against a persistent map; compilation is serialised so a
// key compiles at most once.
type Cache struct {
	mu       sync.Mutex
	programs atomic.Value
	compiles atomic.Int64
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	c := &Cache{}
	c.programs.Store(hashmap.Empty())
	return c
}

func (c *Cache) snapshot() *hashmap.Map {
	return c.programs.Load().(*hashmap.Map)
}

// Lookup returns the cached program for key, if any.
func (c *Cache) Lookup(key string) (*Program, bool) {
	v, ok := c.snapshot().Find(key)
	if !ok {
		return nil, false
	}
	return v.(*Program), true
}

// GetOrCompile returns the cached program for key, compiling it with
// compile on a miss. Concurrent callers with the same key race to the
// mutex; the loser finds the winner's program and compile never runs
// twice for one key.
func (c *Cache) GetOrCompile(key string, compile func() (*Program, error)) (*Program, error) {
	if p, ok := c.Lookup(key); ok {
		return p, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.Lookup(key); ok {
		return p, nil
	}
	p, err := compile()
	if err != nil {
		return nil, err
	}
	m := c.snapshot().Transform(func(t *hashmap.TMap) *hashmap.TMap {
		return t.Assoc(key, p)
	})
	c.programs.Store(m)
	c.compiles.Add(1)
	return p, nil
}

// Compiles returns how many programs the cache has compiled.
func (c *Cache) Compiles() int64 {
	return c.compiles.Load()
}

// Len returns the number of cached programs.
func (c *Cache) Len() int {
	return c.snapshot().Length()
}
