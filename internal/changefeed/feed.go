package changefeed

import (
	"context"
	"time"
)

const (
	ChannelBufferLimit = 50

	SingleRequestTimeout = 30 * time.Second
	flushInterval        = 1 * time.Second
	deliverTimeout       = 1 * time.Minute
)

// Event announces that a content document changed.
type Event struct {
	ID     string    `json:"id"`
	Key    string    `json:"key"`
	Source string    `json:"source"`
	At     time.Time `json:"at"`
}

// Feed carries change events between site nodes.
type Feed interface {
	Publish(ctx context.Context, ev Event) error
	Events() <-chan Event
	Start(ctx context.Context)
	Close(ctx context.Context) error
}
