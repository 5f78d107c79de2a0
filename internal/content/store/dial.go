package store

import (
	"context"
	"fmt"
	"time"

	"hkm-site/internal/cache"
	"hkm-site/internal/domain/config"

	"go.uber.org/zap"
)

type DialOptions struct {
	SeedFile string
	Cache    cache.CachedStorage
	CacheTTL time.Duration
}

// NewDialer builds backends by name. A configured cache wraps the result.
func NewDialer(logger *zap.SugaredLogger, opts DialOptions) Dialer {
	return func(ctx context.Context, conn config.ContentConnection) (Backend, error) {
		var (
			backend Backend
			err     error
		)

		switch conn.Backend {
		case config.BackendMemory:
			mem := NewMemoryBackend(logger)
			if opts.SeedFile != "" {
				err = mem.Seed(opts.SeedFile)
			}
			backend = mem
		case config.BackendSurreal:
			backend, err = DialSurreal(ctx, logger, conn)
		case config.BackendRedis:
			backend, err = DialRedis(ctx, logger, conn)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, conn.Backend)
		}

		if err != nil {
			return nil, err
		}

		if opts.Cache != nil && conn.Backend != config.BackendMemory {
			backend = NewCachedBackend(backend, opts.Cache, opts.CacheTTL, logger)
		}

		return backend, nil
	}
}
