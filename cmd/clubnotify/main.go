// Command clubnotify runs the notification delivery service: the HTTP API,
// the live event stream and the background push retry sweeper.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/clubnotify/internal/api"
	"github.com/dmitrymomot/clubnotify/pkg/config"
	"github.com/dmitrymomot/clubnotify/pkg/eventbus"
	"github.com/dmitrymomot/clubnotify/pkg/httpserver"
	"github.com/dmitrymomot/clubnotify/pkg/kafka"
	"github.com/dmitrymomot/clubnotify/pkg/logger"
	"github.com/dmitrymomot/clubnotify/pkg/metrics"
	"github.com/dmitrymomot/clubnotify/pkg/notifications"
	"github.com/dmitrymomot/clubnotify/pkg/pg"
	"github.com/dmitrymomot/clubnotify/pkg/push"
	"github.com/dmitrymomot/clubnotify/pkg/redis"
	"github.com/dmitrymomot/clubnotify/pkg/requestid"
	"github.com/dmitrymomot/clubnotify/pkg/stream"
	"github.com/dmitrymomot/clubnotify/pkg/userdir"
)

type appConfig struct {
	Log           logger.Config
	Postgres      pg.Config
	Redis         redis.Config
	HTTP          httpserver.Config
	Stream        stream.Config
	Push          push.Config
	Notifications notifications.Config
	Kafka         kafka.Config

	UserCacheSize    int           `env:"USER_CACHE_SIZE" envDefault:"4096"`
	UserCacheTTL     time.Duration `env:"USER_CACHE_TTL" envDefault:"5m"`
	ReadinessTimeout time.Duration `env:"READINESS_TIMEOUT" envDefault:"2s"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("clubnotify stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log := logger.FromConfig(cfg.Log, logger.WithContextExtractors(requestid.LoggerExtractor()))
	logger.SetAsDefault(log)

	pool, err := pg.Connect(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool, cfg.Postgres, log); err != nil {
		return err
	}

	storage := notifications.NewPostgresStorage(pool)
	registry, err := loadRegistry(ctx, cfg.Notifications, storage)
	if err != nil {
		return err
	}

	users := userdir.NewCachedDirectory(
		userdir.NewPostgresDirectory(pool),
		userdir.WithCapacity(cfg.UserCacheSize),
		userdir.WithTTL(cfg.UserCacheTTL),
	)

	// the producer is deferred before the bus so it closes after the bus drains
	var producer *kafka.Producer
	if cfg.Kafka.Enabled() {
		if producer, err = kafka.NewProducer(cfg.Kafka, kafka.WithLogger(log)); err != nil {
			return err
		}
		defer func() { _ = producer.Close() }()
	}

	bus := eventbus.New(eventbus.WithLogger(log))
	defer func() { _ = bus.Close() }()

	svc := notifications.NewService(storage, registry, users,
		notifications.WithLogger(log),
		notifications.WithTransactor(pg.NewTransactor(pool, pg.WithTransactorLogger(log))),
		notifications.WithPublisher(bus),
		notifications.WithConfig(cfg.Notifications),
	)

	m := metrics.New(metrics.WithRuntimeMetrics())
	m.Register(bus)

	checks := []httpserver.Check{{Name: "postgres", Fn: pg.Healthcheck(pool)}}
	streamOpts := []stream.Option{
		stream.WithLogger(log),
		stream.WithObserver(m),
		stream.WithTimeout(cfg.Stream.ConnectionTimeout),
		stream.WithHeartbeatInterval(cfg.Stream.HeartbeatInterval),
	}
	if cfg.Redis.Enabled() {
		client, err := redis.Connect(ctx, cfg.Redis, log)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		streamOpts = append(streamOpts,
			stream.WithPresence(stream.NewRedisPresence(client, cfg.Stream.InstanceID, cfg.Stream.PresenceTTL)))
		checks = append(checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client, cfg.Redis.PingTimeout)})
	}
	streams := stream.NewRegistry(svc, streamOpts...)

	gateway, err := newGateway(ctx, cfg.Push, log)
	if err != nil {
		return err
	}
	pusher := push.NewAdapter(users, gateway,
		push.WithLogger(log),
		push.WithSendTimeout(cfg.Push.SendTimeout),
	)

	dispatcher := notifications.NewDispatcher(registry, storage, streams, pusher,
		notifications.WithDispatcherLogger(log),
		notifications.WithDeliveryRecorder(m),
	)
	dispatcher.Register(bus)
	sweeper := notifications.NewPushSweeper(dispatcher, cfg.Notifications, notifications.WithSweeperLogger(log))

	if producer != nil {
		notifications.NewExporter(producer).Register(bus)
	}

	handler := api.New(svc, streams,
		api.WithLogger(log),
		api.WithMetrics(m.Handler()),
		api.WithReadiness(cfg.ReadinessTimeout, checks...),
		api.WithStreamWriteTimeout(cfg.Stream.WriteTimeout),
	)
	server := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithShutdownHook(func() { _ = streams.Close() }),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return streams.Run(gctx) })
	g.Go(func() error { return sweeper.Run(gctx) })
	g.Go(func() error { return server.Run(gctx, handler.Routes()) })
	return g.Wait()
}

// loadRegistry reads the catalog, upserts it and builds the registry from the
// stored rows so every type carries its database id.
func loadRegistry(ctx context.Context, cfg notifications.Config, store notifications.TypeStorage) (*notifications.Registry, error) {
	types := notifications.DefaultTypes()
	if cfg.TypesFile != "" {
		var err error
		if types, err = notifications.LoadRegistryFile(cfg.TypesFile); err != nil {
			return nil, err
		}
	}
	synced, err := store.SyncTypes(ctx, types)
	if err != nil {
		return nil, err
	}
	return notifications.NewRegistry(synced...)
}

func newGateway(ctx context.Context, cfg push.Config, log *slog.Logger) (push.Gateway, error) {
	switch cfg.Provider {
	case push.ProviderSNS:
		return push.NewSNSGateway(ctx, cfg)
	case push.ProviderLog, "":
		return push.NewLogGateway(log), nil
	default:
		return nil, errors.Join(push.ErrInvalidConfig, errors.New("unknown push provider "+cfg.Provider))
	}
}
