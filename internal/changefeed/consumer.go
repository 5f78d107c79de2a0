package changefeed

import (
	"context"

	"go.uber.org/zap"
)

// Consume hands every event from feed to handle until the feed closes or ctx ends.
func Consume(ctx context.Context, logger *zap.SugaredLogger, feed Feed, handle func(Event)) {
	events := feed.Events()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}

			logger.Debugw("Content change received", "key", ev.Key, "id", ev.ID, "source", ev.Source)
			handle(ev)
		case <-ctx.Done():
			return
		}
	}
}
