package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"hkm-site/internal/cache"
	"hkm-site/internal/domain/config"
	"hkm-site/internal/networker"
	"hkm-site/internal/podcast"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// PodcastApp is the standalone feed proxy. It needs no content layer.
type PodcastApp struct {
	logger *zap.SugaredLogger
	cfg    *config.Config
	srv    *http.Server
	rdb    *redis.Client
	tp     *trace.TracerProvider

	serveDone chan struct{}
	serveErr  error
}

func InitPodcastApp(cfgFile string) *PodcastApp {
	InitEnv()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logger := InitLogger(cfg.Env)
	tp := initTracing(logger, cfg.Otel)

	var (
		feedCache cache.CachedStorage
		rdb       *redis.Client
	)
	if cfg.RedisEnabled() {
		rdb = initRedisClient(logger, cfg.Redis, cfg.Redis.CacheDB)
		feedCache = cache.NewRedisCache(rdb, logger, "hkm:podcast:")
	} else {
		feedCache = cache.NewMemoryCache()
	}

	fetcher := networker.NewNetworker(logger, cfg.Podcast.UserAgent)
	robots := podcast.NewRobotsChecker(logger, fetcher, feedCache, cfg.Podcast.UserAgent)
	handler := podcast.NewHandler(logger, fetcher, feedCache, robots, cfg.Podcast.FeedURL, cfg.Podcast.CacheTTL)

	return &PodcastApp{
		logger: logger,
		cfg:    cfg,
		srv: &http.Server{
			Addr:              cfg.Podcast.Addr,
			Handler:           podcast.NewRouter(handler),
			ReadHeaderTimeout: 10 * time.Second,
		},
		rdb: rdb,
		tp:  tp,

		serveDone: make(chan struct{}),
	}
}

func (app *PodcastApp) StartApp(context.Context) error {
	go func() {
		defer close(app.serveDone)

		app.logger.Infow("Podcast proxy listening", "addr", app.srv.Addr, "route", podcast.Route)
		if err := app.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.serveErr = fmt.Errorf("failed to serve podcast proxy: %w", err)
		}
	}()

	return nil
}

func (app *PodcastApp) Done() <-chan struct{} {
	return app.serveDone
}

func (app *PodcastApp) StopApp(ctx context.Context) error {
	var errs []error

	if err := app.srv.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shut down podcast proxy: %w", err))
	}

	<-app.serveDone
	if app.serveErr != nil {
		errs = append(errs, app.serveErr)
	}

	if app.rdb != nil {
		if err := app.rdb.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}

	if app.tp != nil {
		if err := app.tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shut down tracer provider: %w", err))
		}
	}

	_ = app.logger.Sync()

	return errors.Join(errs...)
}
