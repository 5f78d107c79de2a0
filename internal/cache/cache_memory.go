package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCachedStorage is the single-process fallback used when redis is not configured.
type MemoryCachedStorage struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCachedStorage {
	return &MemoryCachedStorage{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (c *MemoryCachedStorage) Set(key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.entries[key] = e

	return nil
}

func (c *MemoryCachedStorage) Get(key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}

	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, ErrCacheMiss
	}

	return append([]byte(nil), e.value...), nil
}

func (c *MemoryCachedStorage) Delete(keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, k := range keys {
		delete(c.entries, k)
	}

	return nil
}
