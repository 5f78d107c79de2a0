package app

import (
	"context"
	"time"
)

const (
	DefaultSaverWorkers    = 4
	DefaultShutdownTimeout = 30 * time.Second
	startupTimeout         = 10 * time.Second
)

type App interface {
	StartApp(ctx context.Context) error
	StopApp(ctx context.Context) error
}
