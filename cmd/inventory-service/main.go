package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/Bookstore-Inventory-System/internal/inventory/application"
	invgrpc "github.com/dmehra2102/Bookstore-Inventory-System/internal/inventory/infrastructure/grpc"
	inventoryKafka "github.com/dmehra2102/Bookstore-Inventory-System/internal/inventory/infrastructure/kafka"
	inventoryDB "github.com/dmehra2102/Bookstore-Inventory-System/internal/inventory/infrastructure/postgres"
	"github.com/dmehra2102/Bookstore-Inventory-System/internal/inventory/infrastructure/sqlite"
	"github.com/dmehra2102/Bookstore-Inventory-System/pkg/config"
	"github.com/dmehra2102/Bookstore-Inventory-System/pkg/health"
	"github.com/dmehra2102/Bookstore-Inventory-System/pkg/idempotency"
	"github.com/dmehra2102/Bookstore-Inventory-System/pkg/logging"
	"github.com/dmehra2102/Bookstore-Inventory-System/pkg/shutdown"
	"github.com/dmehra2102/Bookstore-Inventory-System/pkg/tracing"
)

func main() {
	cfg, err := config.Load("inventory-service")
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

	mp, err := tracing.InitMetrics(ctx, cfg.ServiceName, cfg.OTelEndpoint, log)
	if err != nil {
		log.Error("otel metrics init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = mp.Shutdown(context.Background()) }()

	checks := map[string]health.Check{}
	ledger, closeLedger, err := openLedger(ctx, cfg, log, checks)
	if err != nil {
		log.Error("ledger open failed", "driver", cfg.LedgerDriver, "err", err)
		os.Exit(1)
	}
	defer closeLedger()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	idem := idempotency.NewStore(rdb, cfg.IdempotencyTTL)
	checks["redis"] = idem.Ping

	recorder := application.NewRecorder(nil)
	reactor := application.NewReactor(log, ledger, recorder, application.WithMaxTries(cfg.RetryMaxTries))
	inventory := application.NewInventoryService(ledger, recorder)
	stores := application.NewStoreService(ledger)

	// gRPC server
	gs, err := invgrpc.Run(cfg.GRPCAddr, invgrpc.NewServer(inventory, stores))
	if err != nil {
		log.Error("grpc server failed", "err", err)
		os.Exit(1)
	}
	defer gs.GracefulStop()

	go func() {
		if err := health.Serve(ctx, cfg.HealthAddr, health.NewHandler(log, checks).Routes()); err != nil {
			log.Error("health server stopped", "err", err)
		}
	}()

	reader := inventoryKafka.NewReader(cfg.KafkaBrokers, cfg.KafkaGroup)
	consumer := inventoryKafka.NewConsumer(log, reader, reactor, idem)
	go func() {
		if err := consumer.Run(ctx); err != nil {
			log.Error("consumer stopped", "err", err)
			cancel()
		}
	}()

	log.Info("inventory-service started", "grpc", cfg.GRPCAddr, "ledger", cfg.LedgerDriver, "topics", inventoryKafka.Topics)
	<-ctx.Done()
	log.Info("inventory-service shutdown")
}

func openLedger(ctx context.Context, cfg config.Config, log *slog.Logger, checks map[string]health.Check) (application.Ledger, func(), error) {
	if cfg.LedgerDriver == config.DriverSQLite {
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		checks["ledger"] = db.PingContext
		return sqlite.NewLedger(db), func() { _ = db.Close() }, nil
	}

	pool, err := pgxpool.New(ctx, cfg.PGURL)
	if err != nil {
		return nil, nil, err
	}
	if err := inventoryDB.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	checks["ledger"] = pool.Ping
	return inventoryDB.NewLedger(log, pool), pool.Close, nil
}
