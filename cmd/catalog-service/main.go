package main

import (
	"context"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/segmentio/kafka-go"

	"github.com/dmehra2102/Bookstore-Inventory-System/internal/catalog/application"
	catgrpc "github.com/dmehra2102/Bookstore-Inventory-System/internal/catalog/infrastructure/grpc"
	catalogDB "github.com/dmehra2102/Bookstore-Inventory-System/internal/catalog/infrastructure/postgres"
	"github.com/dmehra2102/Bookstore-Inventory-System/pkg/config"
	"github.com/dmehra2102/Bookstore-Inventory-System/pkg/events"
	"github.com/dmehra2102/Bookstore-Inventory-System/pkg/health"
	"github.com/dmehra2102/Bookstore-Inventory-System/pkg/logging"
	"github.com/dmehra2102/Bookstore-Inventory-System/pkg/outbox"
	"github.com/dmehra2102/Bookstore-Inventory-System/pkg/shutdown"
	"github.com/dmehra2102/Bookstore-Inventory-System/pkg/tracing"
)

func main() {
	cfg, err := config.Load("catalog-service")
	log := logging.New(cfg.LogLevel)
	if err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, cfg.ServiceName, cfg.OTelEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	pool, err := pgxpool.New(ctx, cfg.PGURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := catalogDB.NewRepository(log, pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Error("schema setup failed", "err", err)
		os.Exit(1)
	}

	// Outbox relay
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
	}
	defer writer.Close()
	dispatch := outbox.NewDispatcher(log, writer, events.TopicBookPublished)
	relay := outbox.NewRelay(log, outbox.NewPGStore(log, pool), dispatch, "catalog-service-relay")
	go func() {
		if err := relay.Run(ctx); err != nil {
			log.Error("relay stopped", "err", err)
		}
	}()

	gs, err := catgrpc.Run(cfg.GRPCAddr, catgrpc.NewServer(application.NewService(repo, repo)))
	if err != nil {
		log.Error("grpc server failed", "err", err)
		os.Exit(1)
	}
	defer gs.GracefulStop()

	go func() {
		checks := map[string]health.Check{"postgres": pool.Ping}
		if err := health.Serve(ctx, cfg.HealthAddr, health.NewHandler(log, checks).Routes()); err != nil {
			log.Error("health server stopped", "err", err)
		}
	}()

	log.Info("catalog-service started", "grpc", cfg.GRPCAddr)
	<-ctx.Done()
	log.Info("catalog-service shutdown")
}
