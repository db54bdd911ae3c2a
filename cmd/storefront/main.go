package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/bagelworks/storefront/config"
	"github.com/bagelworks/storefront/internal/api"
	"github.com/bagelworks/storefront/internal/auth"
	cartredis "github.com/bagelworks/storefront/internal/cart/infrastructure/redis"
	catalogapp "github.com/bagelworks/storefront/internal/catalog/application"
	catalogpg "github.com/bagelworks/storefront/internal/catalog/infrastructure/postgres"
	checkoutapp "github.com/bagelworks/storefront/internal/checkout/application"
	checkoutkafka "github.com/bagelworks/storefront/internal/checkout/infrastructure/kafka"
	checkoutpg "github.com/bagelworks/storefront/internal/checkout/infrastructure/postgres"
	healthapp "github.com/bagelworks/storefront/internal/health/application"
	healthpg "github.com/bagelworks/storefront/internal/health/infrastructure/postgres"
	"github.com/bagelworks/storefront/pkg/idempotency"
	"github.com/bagelworks/storefront/pkg/logging"
	"github.com/bagelworks/storefront/pkg/outbox"
	"github.com/bagelworks/storefront/pkg/shutdown"
	"github.com/bagelworks/storefront/pkg/tracing"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		logging.New("info").Error("config load failed", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, cfg.AppName, cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(ctx) }()

	// Postgres
	pool, err := pgxpool.New(ctx, cfg.PGURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Redis: session carts, auth sessions, idempotency keys
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	// Kafka producer for the outbox relay
	writer := checkoutkafka.NewWriter([]string{cfg.KafkaAddr})
	defer writer.Close()

	catalogRepo := catalogpg.NewRepository(log, pool)
	catalogSvc := catalogapp.NewService(catalogRepo)

	checkoutRepo := checkoutpg.NewRepository(log, pool)
	checkoutSvc := checkoutapp.NewService(log, checkoutRepo, catalogRepo)

	outboxStore := checkoutpg.NewOutboxStore(log, pool)
	dispatch := outbox.NewDispatcher(log, writer, cfg.OutboxTopic)
	relay := outbox.NewRelay(log, outboxStore, dispatch, "storefront-relay")

	carts := cartredis.NewStore(rdb, cfg.CartTTL)
	sessions := auth.NewSessionStore(rdb, cfg.SessionTTL)
	creds := auth.NewVerifier(auth.Credentials{Username: cfg.DemoUsername, Password: cfg.DemoPassword})
	idem := idempotency.NewStore(rdb, cfg.IdempotencyTTL)

	verifier := healthapp.NewVerifier(log, healthpg.NewInspector(pool))

	handler := api.NewHandler(log, catalogSvc, carts, checkoutSvc, verifier, creds, sessions, idem, api.VersionInfo{
		Application: cfg.AppName,
		Version:     cfg.AppVersion,
		Environment: cfg.Environment,
	})

	r := chi.NewRouter()
	r.Mount("/", handler.Routes())
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := relay.Run(ctx); err != nil {
			log.Error("relay stopped with error", "err", err)
		}
	}()

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	log.Info("storefront shutdown complete")
}
