package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hkm-site/internal/domain/config"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	redisKeyPrefix     = "content:"
	redisChannelPrefix = "content:changes:"
	redisTimeout       = 5 * time.Second
	maxMergeRetries    = 5
)

var ErrMergeConflict = errors.New("document changed concurrently too many times")

type RedisBackend struct {
	client *redis.Client
	logger *zap.SugaredLogger
}

func NewRedisBackend(client *redis.Client, logger *zap.SugaredLogger) *RedisBackend {
	return &RedisBackend{
		client: client,
		logger: logger,
	}
}

func DialRedis(ctx context.Context, logger *zap.SugaredLogger, conn config.ContentConnection) (*RedisBackend, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     conn.Endpoint,
		Password: conn.Password,
		DB:       conn.RedisDB,
	})

	if err := redisotel.InstrumentTracing(rdb); err != nil {
		return nil, fmt.Errorf("failed to instrument redis: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis content store: %w", err)
	}

	logger.Infow("Connected to Redis content store", "addr", conn.Endpoint, "db", conn.RedisDB)
	return NewRedisBackend(rdb, logger), nil
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	raw, err := b.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}

	return raw, nil
}

// Merge runs an optimistic WATCH transaction and publishes the merged snapshot.
func (b *RedisBackend) Merge(ctx context.Context, key string, partial map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	docKey := redisKeyPrefix + key

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, docKey).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		merged, err := MergeDocument(current, partial)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, docKey, merged, 0)
			pipe.Publish(ctx, redisChannelPrefix+key, merged)
			return nil
		})
		return err
	}

	for i := 0; i < maxMergeRetries; i++ {
		err := b.client.Watch(ctx, txf, docKey)
		if errors.Is(err, redis.TxFailedErr) {
			b.logger.Debugw("Merge transaction retried", "key", key, "attempt", i+1)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to merge %s: %w", key, err)
		}
		return nil
	}

	return ErrMergeConflict
}

func (b *RedisBackend) Watch(ctx context.Context, key string) (Watch, error) {
	pubsub := b.client.Subscribe(ctx, redisChannelPrefix+key)

	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", key, err)
	}

	w := &redisWatch{
		pubsub: pubsub,
		ch:     make(chan []byte, watchBuffer),
	}

	initial, err := b.Get(ctx, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		b.logger.Warnw("Initial snapshot for subscription failed", "key", key, "error", err)
	}

	go w.forward(initial)

	return w, nil
}

func (b *RedisBackend) Close(_ context.Context) error {
	return b.client.Close()
}

type redisWatch struct {
	pubsub *redis.PubSub
	ch     chan []byte
	once   sync.Once
}

func (w *redisWatch) forward(initial []byte) {
	defer close(w.ch)

	if initial != nil {
		w.ch <- initial
	}

	for msg := range w.pubsub.Channel() {
		w.ch <- []byte(msg.Payload)
	}
}

func (w *redisWatch) Updates() <-chan []byte {
	return w.ch
}

func (w *redisWatch) Close() error {
	var err error
	w.once.Do(func() {
		err = w.pubsub.Close()
	})
	return err
}
