package content

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"hkm-site/internal/content/store"
	"hkm-site/internal/domain/config"

	"go.uber.org/zap"
)

type Reader interface {
	Read(ctx context.Context, key string) *Document
}

type Store interface {
	Reader
	Ready() bool
	Write(ctx context.Context, key string, partial map[string]any) error
	Subscribe(ctx context.Context, key string, onChange func(*Document)) *Subscription
}

// Notifier is told about every successful write.
type Notifier interface {
	ContentChanged(ctx context.Context, key string) error
}

type Service struct {
	logger   *zap.SugaredLogger
	dial     store.Dialer
	schema   *Schema
	notifier Notifier

	mu      sync.RWMutex
	backend store.Backend
	initErr error
}

func NewService(logger *zap.SugaredLogger, dial store.Dialer, schema *Schema) *Service {
	if schema == nil {
		schema = DefaultSchema()
	}

	return &Service{
		logger: logger,
		dial:   dial,
		schema: schema,
	}
}

func (s *Service) SetNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifier = n
}

func (s *Service) Schema() *Schema {
	return s.schema
}

// Initialize connects once. A failed attempt leaves the service inert and is
// kept for diagnostics.
func (s *Service) Initialize(ctx context.Context, conn *config.ContentConnection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend != nil {
		return nil
	}
	if s.initErr != nil {
		return s.initErr
	}

	if conn == nil {
		s.initErr = ErrNoConnection
		s.logger.Errorw("Content layer disabled, using static content", "error", s.initErr)
		return s.initErr
	}

	backend, err := s.dial(ctx, *conn)
	if err != nil {
		s.initErr = fmt.Errorf("failed to initialize content backend %s: %w", conn.Backend, err)
		s.logger.Errorw("Content layer disabled, using static content", "backend", conn.Backend, "error", err)
		return s.initErr
	}

	s.backend = backend
	s.logger.Infow("Content layer ready", "backend", conn.Backend)

	return nil
}

// NewServiceWithBackend returns a ready service over an existing backend.
func NewServiceWithBackend(logger *zap.SugaredLogger, backend store.Backend, schema *Schema) *Service {
	s := NewService(logger, nil, schema)
	s.backend = backend
	return s
}

func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.backend != nil
}

func (s *Service) InitErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.initErr
}

func (s *Service) Backend() store.Backend {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.backend
}

// Read never fails: every problem is logged and reported as nil.
func (s *Service) Read(ctx context.Context, key string) *Document {
	doc, err := s.ReadStrict(ctx, key)
	switch {
	case errors.Is(err, ErrNotInitialized):
		return nil
	case errors.Is(err, store.ErrNotFound):
		s.logger.Debugw("Content document not found", "key", key)
		return nil
	case err != nil:
		s.logger.Warnw("Content document ignored", "key", key, "error", err)
		return nil
	}

	return doc
}

// ReadStrict is Read for writers that must not mistake a failure for an empty
// document. A missing document is reported as store.ErrNotFound.
func (s *Service) ReadStrict(ctx context.Context, key string) (*Document, error) {
	backend := s.Backend()
	if backend == nil {
		return nil, ErrNotInitialized
	}

	if !ValidKey(key) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	raw, err := backend.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	doc, err := NewDocument(key, raw)
	if err != nil {
		return nil, err
	}

	unknown, mismatched := s.schema.Validate(doc)
	if len(unknown) > 0 {
		s.logger.Debugw("Content document has undeclared fields", "key", key, "fields", unknown)
	}
	if len(mismatched) > 0 {
		s.logger.Debugw("Content document has fields that do not fit its shape", "key", key, "fields", mismatched)
	}

	return doc, nil
}

// Write merges partial into the stored document.
func (s *Service) Write(ctx context.Context, key string, partial map[string]any) error {
	s.mu.RLock()
	backend, notifier := s.backend, s.notifier
	s.mu.RUnlock()

	if backend == nil {
		return ErrNotInitialized
	}

	if !ValidKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	if err := backend.Merge(ctx, key, partial); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	if notifier != nil {
		if err := notifier.ContentChanged(ctx, key); err != nil {
			s.logger.Warnw("Failed to publish content change", "key", key, "error", err)
		}
	}

	return nil
}

// Subscribe calls onChange with every snapshot of key until the returned
// subscription is closed. Nil means live updates are unavailable.
func (s *Service) Subscribe(ctx context.Context, key string, onChange func(*Document)) *Subscription {
	backend := s.Backend()
	if backend == nil {
		return nil
	}

	if !ValidKey(key) {
		s.logger.Warnw("Refusing to subscribe to invalid key", "key", key)
		return nil
	}

	watch, err := backend.Watch(ctx, key)
	if err != nil {
		s.logger.Warnw("Live subscription failed", "key", key, "error", err)
		return nil
	}

	sub := newSubscription(s.logger, key, watch, onChange)
	go sub.run()

	return sub
}

func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend == nil {
		return nil
	}

	err := s.backend.Close(ctx)
	s.backend = nil
	s.initErr = ErrNotInitialized

	return err
}
