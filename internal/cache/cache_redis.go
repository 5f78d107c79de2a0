package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisOpTimeout = 5 * time.Second

type RedisCachedStorage struct {
	Logger *zap.SugaredLogger
	Client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client, logger *zap.SugaredLogger, prefix string) *RedisCachedStorage {
	return &RedisCachedStorage{
		Client: client,
		Logger: logger,
		prefix: prefix,
	}
}

func (c *RedisCachedStorage) Set(key string, value []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	return c.Client.Set(ctx, c.prefix+key, value, ttl).Err()
}

func (c *RedisCachedStorage) Get(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	val, err := c.Client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}

	return val, err
}

func (c *RedisCachedStorage) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.prefix + k
	}

	return c.Client.Del(ctx, prefixed...).Err()
}
