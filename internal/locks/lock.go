package locks

import (
	"context"
	"time"
)

// Locker hands out named, expiring, owner-checked locks. Acquire is
// non-blocking and reports whether this node now holds the lock.
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name string) error
	Stop(ctx context.Context) error
}
