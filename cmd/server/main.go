// main wires high-level dependencies and keeps the server lifecycle small.
// Ledger logic lives in the internal packages.
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
	"golang.org/x/sync/errgroup"

	"colonx/internal/events"
	"colonx/internal/events/kafka"
	"colonx/internal/events/worker"
	"colonx/internal/jwtauth"
	"colonx/internal/platform/config"
	"colonx/internal/platform/httpserver"
	"colonx/internal/platform/logger"
	"colonx/internal/platform/metrics"
	"colonx/internal/platform/postgres"
	platformredis "colonx/internal/platform/redis"
	"colonx/internal/token"
	httptransport "colonx/internal/transport/http"
	"colonx/internal/validate"
	"colonx/pkg/platform/middleware/auth"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("configuration failed", "error", err)
		os.Exit(1)
	}
	log := logger.New(slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// Event sink: postgres outbox when configured, in-memory otherwise.
	var store events.Store
	var pgStore *events.PostgresStore
	if cfg.Events.PostgresDSN != "" {
		db, err := postgres.Open(cfg.Events.PostgresDSN)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if _, err := db.ExecContext(ctx, events.Schema); err != nil {
			log.Error("event schema migration failed", "error", err)
			os.Exit(1)
		}
		pgStore = events.NewPostgresStore(db)
		store = pgStore
	} else {
		store = events.NewInMemoryStore()
	}

	publisher := events.NewPublisher(store, events.WithAsyncBuffer(cfg.Events.AsyncBuffer))
	defer publisher.Close()

	limits := validate.DefaultLimits()
	limits.EnableSupplyLimits = cfg.Limits.EnableSupplyLimits
	limits.EnableOperationLimits = cfg.Limits.EnableOperationLimits

	service := token.NewService(limits, publisher, m, log)

	jwtService := jwtauth.NewService(cfg.Auth.SigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)

	var revocationChecker auth.TokenRevocationChecker
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		revocationChecker = jwtauth.NewRedisRevocationList(redisClient.Client)
	}

	handler := httptransport.NewHandler(service, jwtService, log)
	router := httptransport.NewRouter(handler, httptransport.RouterConfig{
		Validator:         jwtauth.MiddlewareAdapter{Service: jwtService},
		RevocationChecker: revocationChecker,
		MetricsGatherer:   registry,
		DevTokenEndpoint:  cfg.Auth.DevTokenEndpoint,
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("starting colonx ledger", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Outbox relay runs only with both postgres and brokers configured.
	if pgStore != nil && len(cfg.Events.Brokers) > 0 {
		sink, err := kafka.NewSink(ctx, cfg.Events.Brokers, cfg.Events.Topic)
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer sink.Close()

		relay := worker.NewRelay(pgStore, sink, log, cfg.Events.RelayInterval, cfg.Events.RelayBatch)
		group.Go(func() error {
			err := relay.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
