package app

import (
	"context"
	"errors"
	"log"
	"os"

	"hkm-site/internal/cache"
	"hkm-site/internal/changefeed"
	"hkm-site/internal/content"
	"hkm-site/internal/content/store"
	"hkm-site/internal/domain/config"
	"hkm-site/internal/locks"
	"hkm-site/internal/pages"

	"github.com/joho/godotenv"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	neoconfig "github.com/neo4j/neo4j-go-driver/v5/neo4j/config"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
	"go.uber.org/zap"
)

// Base holds what every entry point needs: logger, config, tracing and the
// content layer with its cache and change feed.
type Base struct {
	Logger  *zap.SugaredLogger
	Config  *config.Config
	NodeID  string
	Content *content.Service
	Feed    changefeed.Feed

	tracerProvider *trace.TracerProvider
	redisClients   []*redis.Client
}

// InitBase wires the shared stack. Only long-running processes consume the
// change feed; one-shot commands just publish to it.
func InitBase(cfgFile string, consume bool) *Base {
	InitEnv()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logger := InitLogger(cfg.Env)
	nodeID := ulid.Make().String()

	b := &Base{
		Logger: logger,
		Config: cfg,
		NodeID: nodeID,
	}

	b.tracerProvider = initTracing(logger, cfg.Otel)

	var contentCache cache.CachedStorage
	if cfg.RedisEnabled() {
		contentCache = cache.NewRedisCache(b.redisClient(cfg.Redis.CacheDB), logger, "hkm:")
	}

	b.Content = initContent(logger, cfg, contentCache)

	if cfg.KafkaEnabled() {
		group := ""
		if consume {
			group = cfg.Kafka.ConsumerGroup + "-" + nodeID
		}
		b.Feed = initFeed(logger, cfg.Kafka, group)
		b.Content.SetNotifier(changefeed.NewNotifier(logger, b.Feed, nodeID))
	}

	return b
}

func (b *Base) redisClient(db int) *redis.Client {
	rdb := initRedisClient(b.Logger, b.Config.Redis, db)
	b.redisClients = append(b.redisClients, rdb)
	return rdb
}

// Locker returns a redis-backed lock when redis is configured.
func (b *Base) Locker() locks.Locker {
	if !b.Config.RedisEnabled() {
		return locks.NewMemoryLocker()
	}

	return locks.NewRedisLocker(b.redisClient(b.Config.Redis.LockDB), b.Logger, b.NodeID)
}

func (b *Base) Close(ctx context.Context) {
	if b.Feed != nil {
		if err := b.Feed.Close(ctx); err != nil {
			b.Logger.Warnw("Failed to close change feed", "error", err)
		}
	}

	if err := b.Content.Close(ctx); err != nil {
		b.Logger.Warnw("Failed to close content backend", "error", err)
	}

	for _, rdb := range b.redisClients {
		if err := rdb.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			b.Logger.Warnw("Failed to close redis client", "error", err)
		}
	}

	if b.tracerProvider != nil {
		if err := b.tracerProvider.Shutdown(ctx); err != nil {
			b.Logger.Warnw("Failed to shut down tracer provider", "error", err)
		}
	}

	_ = b.Logger.Sync()
}

func initContent(logger *zap.SugaredLogger, cfg *config.Config, contentCache cache.CachedStorage) *content.Service {
	override, err := config.LoadOverride(cfg.Content.OverrideFile)
	if err != nil {
		logger.Warnw("Ignoring content override", "file", cfg.Content.OverrideFile, "error", err)
	}

	dial := store.NewDialer(logger, store.DialOptions{
		SeedFile: cfg.Content.SeedFile,
		Cache:    contentCache,
		CacheTTL: cfg.Content.CacheTTL,
	})

	svc := content.NewService(logger, dial, nil)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	// A failed connection is logged by Initialize and leaves pages static.
	_ = svc.Initialize(ctx, config.ResolveConnection(cfg.Content.Connection, override))

	return svc
}

func initFeed(logger *zap.SugaredLogger, cfg config.KafkaConfig, group string) changefeed.Feed {
	feed, err := changefeed.NewKafkaFeed(logger, cfg.Seeds, cfg.Topic, group)
	if err != nil {
		logger.Fatalw("Error initializing change feed", "error", err)
	}

	return feed
}

func initRedisClient(logger *zap.SugaredLogger, cfg config.RedisConfig, db int) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       db,
	})

	if err := redisotel.InstrumentTracing(rdb); err != nil {
		log.Fatalf("redisotel tracing err: %v", err)
	}

	if err := redisotel.InstrumentMetrics(rdb); err != nil {
		log.Fatalf("redisotel metrics err: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatalw("Failed to connect to Redis", "addr", cfg.Addr, "db", db, "error", err)
	}

	logger.Infow("Connected to Redis", "addr", cfg.Addr, "db", db)
	return rdb
}

func initSiteGraph(logger *zap.SugaredLogger, cfg config.Neo4jConfig) pages.SiteGraph {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""), func(c *neoconfig.Config) {
		c.MaxConnectionPoolSize = DefaultSaverWorkers * 2
	})
	if err != nil {
		logger.Fatalw("Error initializing neo4j", "error", err)
	}

	graph := pages.NewNeo4jRepo(logger, driver, cfg.Database)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if err := graph.EnsureConnectivity(ctx); err != nil {
		logger.Fatalw("Error connecting to neo4j", "error", err)
	}

	return graph
}

func initTracing(logger *zap.SugaredLogger, cfg config.OtelConfig) *trace.TracerProvider {
	if cfg.Endpoint == "" {
		logger.Debugw("Tracing disabled, no otel endpoint configured")
		return nil
	}

	exp, err := otlptracehttp.New(context.Background(), otlptracehttp.WithEndpoint(cfg.Endpoint), otlptracehttp.WithInsecure())
	if err != nil {
		log.Fatalf("Error initializing otlp exporter: %v", err)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(semconv.ServiceNameKey.String(cfg.ServiceName)),
	)
	if err != nil {
		log.Fatal("Error initializing otel resource:", err)
	}

	tracerProvider := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(res),
	)

	otel.SetTracerProvider(tracerProvider)

	return tracerProvider
}

func InitLogger(env string) *zap.SugaredLogger {
	var (
		zapLogger *zap.Logger
		err       error
	)

	if env == "dev" {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Error initializing zap logger: %v", err)
	}

	return zapLogger.Sugar()
}

// InitEnv loads main.env outside production. The file is optional.
func InitEnv() {
	if os.Getenv("APP_ENV") == "prod" {
		return
	}

	if err := godotenv.Load("main.env"); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Error loading main.env: %v", err)
	}
}
