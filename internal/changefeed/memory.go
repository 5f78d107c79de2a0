package changefeed

import (
	"context"
	"sync"
)

// MemoryFeed loops published events back to Events inside one process.
type MemoryFeed struct {
	mu     sync.Mutex
	ch     chan Event
	closed bool
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{ch: make(chan Event, ChannelBufferLimit)}
}

func (f *MemoryFeed) Publish(ctx context.Context, ev Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}

	select {
	case f.ch <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *MemoryFeed) Events() <-chan Event {
	return f.ch
}

func (f *MemoryFeed) Start(context.Context) {}

func (f *MemoryFeed) Close(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.closed {
		f.closed = true
		close(f.ch)
	}
	return nil
}
