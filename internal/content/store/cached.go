package store

import (
	"context"
	"errors"
	"time"

	"hkm-site/internal/cache"

	"go.uber.org/zap"
)

const cachePrefix = "doc:"

// CachedBackend serves Get from a read-through cache. Merge and the change feed
// invalidate entries.
type CachedBackend struct {
	Backend

	cache  cache.CachedStorage
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func NewCachedBackend(inner Backend, storage cache.CachedStorage, ttl time.Duration, logger *zap.SugaredLogger) *CachedBackend {
	return &CachedBackend{
		Backend: inner,
		cache:   storage,
		ttl:     ttl,
		logger:  logger,
	}
}

func (b *CachedBackend) Get(ctx context.Context, key string) ([]byte, error) {
	cached, err := b.cache.Get(cachePrefix + key)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		b.logger.Warnw("Content cache read failed", "key", key, "error", err)
	}

	raw, err := b.Backend.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if err := b.cache.Set(cachePrefix+key, raw, b.ttl); err != nil {
		b.logger.Warnw("Content cache write failed", "key", key, "error", err)
	}

	return raw, nil
}

func (b *CachedBackend) Merge(ctx context.Context, key string, partial map[string]any) error {
	if err := b.Backend.Merge(ctx, key, partial); err != nil {
		return err
	}

	return b.Invalidate(key)
}

func (b *CachedBackend) Invalidate(keys ...string) error {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = cachePrefix + k
	}

	return b.cache.Delete(prefixed...)
}
