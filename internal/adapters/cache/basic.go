package cache

import (
	"runtime"
	"sync"
)

// basicCache keeps entries until they are deleted
type basicCache[T any] struct {
	mu sync.Mutex
	// A nil entry is claimed but not yet set
	entries map[string]*T
}

func (c *basicCache[T]) getOrClaim(key string) hitResult[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	switch {
	case !ok:
		c.entries[key] = nil
		return hitResult[T]{claimed: true}
	case entry == nil:
		return hitResult[T]{}
	default:
		return hitResult[T]{data: *entry, valid: true}
	}
}

func (c *basicCache[T]) set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &data
}

func (c *basicCache[T]) delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

func (c *basicCache[T]) wait() {
	runtime.Gosched()
}

func NewBasicCache[T any]() Cache[T] {
	return &basicCache[T]{
		entries: make(map[string]*T),
	}
}
