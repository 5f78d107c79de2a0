package app

import (
	"context"
	"fmt"

	"hkm-site/internal/content"
	"hkm-site/internal/events"
	"hkm-site/internal/importer"
	"hkm-site/internal/networker"
)

// Tools backs the one-shot administrative commands.
type Tools struct {
	*Base
}

func InitTools(cfgFile string) *Tools {
	return &Tools{Base: InitBase(cfgFile, false)}
}

// Run starts the change feed producer, runs fn against a ready content store
// and flushes pending change events before returning.
func (t *Tools) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	feedCtx, stopFeed := context.WithCancel(ctx)
	if t.Feed != nil {
		t.Feed.Start(feedCtx)
	}

	var err error
	if t.Content.Ready() {
		err = fn(ctx)
	} else {
		err = fmt.Errorf("%w: %v", content.ErrNotInitialized, t.Content.InitErr())
	}

	stopFeed()

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultShutdownTimeout)
	defer cancel()
	t.Base.Close(closeCtx)

	return err
}

func (t *Tools) Syncer() *events.Syncer {
	fetcher := networker.NewNetworker(t.Logger, siteUserAgent)
	client := events.NewGoogleCalendarClient(t.Logger, fetcher, t.Config.Events.CalendarAPIBase)

	return events.NewSyncer(t.Logger, client, t.Content, t.Locker(), t.Config.Events.SyncLockTTL)
}

func (t *Tools) BlogImporter() *importer.BlogImporter {
	return importer.NewBlogImporter(t.Logger, t.Content)
}
