package catalog

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// readCache memoizes catalog reads for a bounded time. A nil *readCache
// disables caching.
type readCache struct {
	lru *expirable.LRU[string, any]
}

func newReadCache(size int, ttl time.Duration) *readCache {
	if size <= 0 || ttl <= 0 {
		return nil
	}
	return &readCache{lru: expirable.NewLRU[string, any](size, nil, ttl)}
}

func (c *readCache) purge() {
	if c != nil {
		c.lru.Purge()
	}
}

func (c *readCache) remove(keys ...string) {
	if c == nil {
		return
	}
	for _, k := range keys {
		c.lru.Remove(k)
	}
}

// cached returns the value stored under key or loads and stores it. Load
// errors are not cached.
func cached[T any](ctx context.Context, c *readCache, key string, load func(context.Context) (T, error)) (T, error) {
	if c != nil {
		if v, ok := c.lru.Get(key); ok {
			if typed, ok := v.(T); ok {
				return typed, nil
			}
		}
	}
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if c != nil {
		c.lru.Add(key, v)
	}
	return v, nil
}
