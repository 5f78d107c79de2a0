package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hkm-site/internal/changefeed"
	"hkm-site/internal/events"
	"hkm-site/internal/locks"
	"hkm-site/internal/networker"
	"hkm-site/internal/pages"
	"hkm-site/internal/pagesync"
	"hkm-site/internal/render"
	"hkm-site/internal/server"

	"go.uber.org/zap"
)

const siteUserAgent = "hkm-site"

type invalidator interface {
	Invalidate(keys ...string) error
}

type SiteApp struct {
	*Base

	logger  *zap.SugaredLogger
	server  *server.Server
	graph   pages.SiteGraph
	saver   *pages.Saver
	watcher *server.TemplateWatcher
	syncer  *events.Syncer
	locker  locks.Locker

	cancel    context.CancelFunc
	serveDone chan struct{}
	serveErr  error
}

func InitSiteApp(cfgFile string) *SiteApp {
	base := InitBase(cfgFile, true)
	logger := base.Logger
	cfg := base.Config

	loc, err := time.LoadLocation(cfg.Site.TimeZone)
	if err != nil {
		logger.Fatalw("Error loading site time zone", "tz", cfg.Site.TimeZone, "error", err)
	}

	renderer, err := render.NewRenderer(logger, loc)
	if err != nil {
		logger.Fatalw("Error initializing renderer", "error", err)
	}

	var watcher *server.TemplateWatcher
	if cfg.Site.TemplatesDir != "" {
		if err := renderer.Reload(cfg.Site.TemplatesDir); err != nil {
			logger.Fatalw("Error loading templates", "dir", cfg.Site.TemplatesDir, "error", err)
		}

		watcher, err = server.NewTemplateWatcher(logger, renderer, cfg.Site.TemplatesDir)
		if err != nil {
			logger.Fatalw("Error watching templates", "dir", cfg.Site.TemplatesDir, "error", err)
		}
	}

	fetcher := networker.NewNetworker(logger, siteUserAgent)
	calendarClient := events.NewGoogleCalendarClient(logger, fetcher, cfg.Events.CalendarAPIBase)
	resolver := events.NewResolver(logger, base.Content, calendarClient)

	var graph pages.SiteGraph
	if cfg.Neo4jEnabled() {
		graph = initSiteGraph(logger, cfg.Neo4j)
	} else {
		logger.Infow("Neo4j not configured, keeping the link graph in memory")
		graph = pages.NewMemoryRepo()
	}
	saver := pages.NewSaver(logger, graph)

	locker := base.Locker()

	synchronizer := pagesync.NewSynchronizer(logger, base.Content, resolver, renderer)
	srv := server.NewServer(logger, synchronizer, graph, saver, server.Options{
		SiteDir:   cfg.Site.Dir,
		StaticDir: cfg.Site.StaticDir,
		BaseURL:   cfg.Site.BaseURL,
	})

	return &SiteApp{
		Base:    base,
		logger:  logger,
		server:  srv,
		graph:   graph,
		saver:   saver,
		watcher: watcher,
		syncer:  events.NewSyncer(logger, calendarClient, base.Content, locker, cfg.Events.SyncLockTTL),
		locker:  locker,

		serveDone: make(chan struct{}),
	}
}

func (app *SiteApp) StartApp(ctx context.Context) error {
	if app.server == nil {
		return errors.New("site app not initialized")
	}

	runCtx, cancel := context.WithCancel(ctx)
	app.cancel = cancel

	app.saver.StartSaverWorkers(DefaultSaverWorkers)

	if app.Feed != nil {
		app.Feed.Start(runCtx)
		go changefeed.Consume(runCtx, app.logger, app.Feed, app.invalidate)
	}

	if app.watcher != nil {
		go app.watcher.Run(runCtx)
	}

	if every := app.Config.Events.SyncEvery; every > 0 {
		go app.syncer.Every(runCtx, every)
	}

	go func() {
		defer close(app.serveDone)
		app.serveErr = app.server.ListenAndServe(runCtx, app.Config.Site.Addr, DefaultShutdownTimeout)
	}()

	return nil
}

// invalidate drops cached copies of documents written by other nodes.
func (app *SiteApp) invalidate(ev changefeed.Event) {
	if ev.Source == app.NodeID {
		return
	}

	backend, ok := app.Content.Backend().(invalidator)
	if !ok {
		return
	}

	if err := backend.Invalidate(ev.Key); err != nil {
		app.logger.Warnw("Failed to invalidate cached document", "key", ev.Key, "error", err)
	}
}

// Done is closed once the HTTP server has stopped, after a failure or StopApp.
func (app *SiteApp) Done() <-chan struct{} {
	return app.serveDone
}

func (app *SiteApp) StopApp(ctx context.Context) error {
	if app.cancel != nil {
		app.cancel()
	}

	var errs []error

	select {
	case <-app.serveDone:
		if app.serveErr != nil {
			errs = append(errs, app.serveErr)
		}
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("server did not stop: %w", ctx.Err()))
	}

	if err := app.saver.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to drain page saver: %w", err))
	}

	if err := app.graph.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to close site graph: %w", err))
	}

	if err := app.locker.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop locker: %w", err))
	}

	app.Base.Close(ctx)

	return errors.Join(errs...)
}
