package changefeed

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

var ErrClosed = errors.New("change feed closed")

// Notifier publishes a change event for every content write.
type Notifier struct {
	logger *zap.SugaredLogger
	feed   Feed
	nodeID string
	now    func() time.Time
}

func NewNotifier(logger *zap.SugaredLogger, feed Feed, nodeID string) *Notifier {
	return &Notifier{
		logger: logger,
		feed:   feed,
		nodeID: nodeID,
		now:    time.Now,
	}
}

func (n *Notifier) ContentChanged(ctx context.Context, key string) error {
	ev := Event{
		ID:     ulid.Make().String(),
		Key:    key,
		Source: n.nodeID,
		At:     n.now().UTC(),
	}

	if err := n.feed.Publish(ctx, ev); err != nil {
		return err
	}

	n.logger.Debugw("Published content change", "key", key, "id", ev.ID)
	return nil
}
