package locks

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const lockKeyPrefix = "hkm:lock:"

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

type RedisLocker struct {
	client *redis.Client
	logger *zap.SugaredLogger
	nodeID string
}

func NewRedisLocker(client *redis.Client, logger *zap.SugaredLogger, nodeID string) *RedisLocker {
	return &RedisLocker{
		client: client,
		logger: logger,
		nodeID: nodeID,
	}
}

func (l *RedisLocker) key(name string) string {
	return lockKeyPrefix + name
}

func (l *RedisLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	acquired, err := l.client.SetNX(ctx, l.key(name), l.nodeID, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}

	if acquired {
		l.logger.Debugw("Acquired lock", "name", name, "nodeID", l.nodeID)
	}

	return acquired, nil
}

// Release deletes the lock only while this node still owns it.
func (l *RedisLocker) Release(ctx context.Context, name string) error {
	_, err := releaseScript.Run(ctx, l.client, []string{l.key(name)}, l.nodeID).Result()
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", name, err)
	}

	l.logger.Debugw("Released lock", "name", name, "nodeID", l.nodeID)
	return nil
}

func (l *RedisLocker) Stop(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		done <- l.client.Close()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
