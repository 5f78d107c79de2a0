package content

import (
	"sync"

	"hkm-site/internal/content/store"

	"go.uber.org/zap"
)

// Subscription is a live listener on one document. After Close returns no
// further callbacks run. Close must not be called from inside the callback.
type Subscription struct {
	logger   *zap.SugaredLogger
	key      string
	watch    store.Watch
	onChange func(*Document)

	mu     sync.Mutex
	closed bool
	once   sync.Once
	err    error
	done   chan struct{}
}

func newSubscription(logger *zap.SugaredLogger, key string, watch store.Watch, onChange func(*Document)) *Subscription {
	return &Subscription{
		logger:   logger,
		key:      key,
		watch:    watch,
		onChange: onChange,
		done:     make(chan struct{}),
	}
}

func (s *Subscription) Key() string {
	return s.key
}

func (s *Subscription) run() {
	defer close(s.done)

	for raw := range s.watch.Updates() {
		doc, err := NewDocument(s.key, raw)
		if err != nil {
			s.logger.Warnw("Skipping invalid live snapshot", "key", s.key, "error", err)
			continue
		}

		s.deliver(doc)
	}
}

func (s *Subscription) deliver(doc *Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.onChange(doc)
}

func (s *Subscription) Close() error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.err = s.watch.Close()
		s.logger.Debugw("Live subscription released", "key", s.key)
	})

	return s.err
}

// Done is closed once the underlying watch has drained.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}
