package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
)

const watchBuffer = 16

type MemoryBackend struct {
	logger *zap.SugaredLogger

	mu       sync.Mutex
	docs     map[string][]byte
	watchers map[string]map[*memoryWatch]struct{}
}

func NewMemoryBackend(logger *zap.SugaredLogger) *MemoryBackend {
	return &MemoryBackend{
		logger:   logger,
		docs:     make(map[string][]byte),
		watchers: make(map[string]map[*memoryWatch]struct{}),
	}
}

// Seed loads a JSON file shaped {"<key>": {...document...}}.
func (m *MemoryBackend) Seed(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var docs map[string]json.RawMessage
	if err := json.Unmarshal(raw, &docs); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for key, doc := range docs {
		m.docs[key] = append([]byte(nil), doc...)
	}

	m.logger.Infow("Seeded memory content backend", "path", path, "documents", len(docs))
	return nil
}

// Put replaces a whole document, bypassing merge semantics.
func (m *MemoryBackend) Put(key string, raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs[key] = append([]byte(nil), raw...)
	m.broadcast(key, m.docs[key])
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[key]
	if !ok {
		return nil, ErrNotFound
	}

	return append([]byte(nil), doc...), nil
}

func (m *MemoryBackend) Merge(_ context.Context, key string, partial map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	merged, err := MergeDocument(m.docs[key], partial)
	if err != nil {
		return fmt.Errorf("failed to merge %s: %w", key, err)
	}

	m.docs[key] = merged
	m.broadcast(key, merged)

	return nil
}

func (m *MemoryBackend) Watch(_ context.Context, key string) (Watch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w := &memoryWatch{
		backend: m,
		key:     key,
		ch:      make(chan []byte, watchBuffer),
	}

	if m.watchers[key] == nil {
		m.watchers[key] = make(map[*memoryWatch]struct{})
	}
	m.watchers[key][w] = struct{}{}

	if doc, ok := m.docs[key]; ok {
		w.push(doc)
	}

	return w, nil
}

func (m *MemoryBackend) Close(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, set := range m.watchers {
		for w := range set {
			close(w.ch)
		}
		delete(m.watchers, key)
	}

	return nil
}

func (m *MemoryBackend) broadcast(key string, doc []byte) {
	for w := range m.watchers[key] {
		w.push(doc)
	}
}

func (m *MemoryBackend) release(w *memoryWatch) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.watchers[w.key]
	if !ok {
		return
	}
	if _, ok := set[w]; !ok {
		return
	}

	delete(set, w)
	close(w.ch)
}

type memoryWatch struct {
	backend *MemoryBackend
	key     string
	ch      chan []byte
	once    sync.Once
}

// push keeps the newest snapshot when the reader lags behind.
func (w *memoryWatch) push(doc []byte) {
	snapshot := append([]byte(nil), doc...)

	select {
	case w.ch <- snapshot:
		return
	default:
	}

	select {
	case <-w.ch:
	default:
	}

	select {
	case w.ch <- snapshot:
	default:
	}
}

func (w *memoryWatch) Updates() <-chan []byte {
	return w.ch
}

func (w *memoryWatch) Close() error {
	w.once.Do(func() {
		w.backend.release(w)
	})
	return nil
}
