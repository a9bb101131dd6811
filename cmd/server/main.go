package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"contactbook/internal/contact/events"
	"contactbook/internal/contact/export"
	contactHandler "contactbook/internal/contact/handler"
	contactMetrics "contactbook/internal/contact/metrics"
	"contactbook/internal/contact/service"
	"contactbook/internal/contact/store"
	"contactbook/internal/platform/config"
	"contactbook/internal/platform/httpserver"
	"contactbook/internal/platform/kafka"
	"contactbook/internal/platform/logger"
	"contactbook/internal/platform/metrics"
	"contactbook/internal/platform/postgres"
	"contactbook/internal/platform/redis"
	httptransport "contactbook/internal/transport/http"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	checks := make(map[string]httptransport.ReadinessCheck)
	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(contactMetrics.New(reg)),
	}

	contactStore, closeStore, err := buildStore(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer closeStore()
	checks["store"] = contactStore.Ping

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		opts = append(opts, service.WithExportCache(export.NewRedisCache(redisClient.Client, cfg.Contacts.ExportCacheTTL)))
		checks["export_cache"] = redisClient.Health
		log.Info("export cache enabled", "ttl", cfg.Contacts.ExportCacheTTL)
	}

	kafkaClient, err := kafka.New(ctx, cfg.Kafka)
	if err != nil {
		return err
	}
	if kafkaClient != nil {
		defer kafkaClient.Close()
		opts = append(opts, service.WithPublisher(events.NewKafkaPublisher(kafkaClient)))
		checks["events"] = kafka.Health(kafkaClient)
		log.Info("publishing contact events", "topic", cfg.Kafka.Topic)
	} else {
		opts = append(opts, service.WithPublisher(events.NewLogPublisher(log)))
	}

	svc := service.New(contactStore, opts...)
	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:         log,
		Contacts:       contactHandler.New(svc, log, cfg.Contacts.MaxImageBytes),
		Metrics:        metrics.New(reg),
		Gatherer:       reg,
		RequestTimeout: cfg.Server.RequestTimeout,
		Checks:         checks,
	})
	srv := httpserver.New(cfg.Server.ListenAddr(), router, cfg.Server.ReadHeaderTimeout, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting contact list API", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type pingableStore interface {
	service.ContactStore
	Ping(ctx context.Context) error
}

// buildStore picks Postgres when a database URL is configured and the in-memory
// store otherwise.
func buildStore(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (pingableStore, func(), error) {
	if cfg.URL == "" {
		log.Warn("CONTACTS_DATABASE_URL not set, contacts are kept in memory")
		return store.NewInMemory(), func() {}, nil
	}
	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	log.Info("using postgres contact store")
	return store.NewPostgres(db), func() { _ = db.Close() }, nil
}
