package locks

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker serializes work inside a single process when redis is not configured.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		held: make(map[string]time.Time),
		now:  time.Now,
	}
}

func (l *MemoryLocker) Acquire(_ context.Context, name string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if expires, ok := l.held[name]; ok && l.now().Before(expires) {
		return false, nil
	}

	l.held[name] = l.now().Add(ttl)
	return true, nil
}

func (l *MemoryLocker) Release(_ context.Context, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.held, name)
	return nil
}

func (l *MemoryLocker) Stop(context.Context) error {
	return nil
}
