package store

import (
	"context"
	"errors"
	"hkm-site/internal/domain/config"
)

var (
	ErrNotFound       = errors.New("document not found")
	ErrUnknownBackend = errors.New("unknown content backend")
	ErrNotObject      = errors.New("document is not a JSON object")
)

// Backend is a document store keyed by string ids. Documents travel as raw
// JSON objects.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Merge(ctx context.Context, key string, partial map[string]any) error
	Watch(ctx context.Context, key string) (Watch, error)
	Close(ctx context.Context) error
}

// Watch delivers full snapshots of one document. Updates is closed once Close
// has released the underlying listener.
type Watch interface {
	Updates() <-chan []byte
	Close() error
}

type Dialer func(ctx context.Context, conn config.ContentConnection) (Backend, error)
