package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/atlas-erp/atlas/internal/app"
	"github.com/atlas-erp/atlas/internal/customers"
	"github.com/atlas-erp/atlas/internal/invoices"
	"github.com/atlas-erp/atlas/internal/ledger"
	"github.com/atlas-erp/atlas/internal/payments"
	"github.com/atlas-erp/atlas/internal/platform/db"
	"github.com/atlas-erp/atlas/internal/products"
	"github.com/atlas-erp/atlas/internal/reports"
	"github.com/atlas-erp/atlas/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	client := jobs.NewClient(redisOpts)
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("asynq client close", slog.Any("error", err))
		}
	}()

	ledgerReader := ledger.NewReader(ledger.NewRepository(pool))
	productRepo := products.NewRepository(pool)

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportLoader := &reports.RepoLoader{
		Customers: customers.NewRepository(pool),
		Products:  productRepo,
		Invoices:  invoices.NewRepository(pool),
		Payments:  payments.NewRepository(pool),
	}
	reportService := reports.NewService(reportLoader, reportCache)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLedgerIntegrity, Handler: jobs.NewLedgerIntegrityHandler(ledgerReader, logger)},
			{Type: jobs.TaskInventoryLowStock, Handler: jobs.NewLowStockHandler(productRepo, client, cfg.LowStockNotify, logger)},
			{Type: jobs.TaskReportsWarmup, Handler: jobs.NewReportsWarmupHandler(reportService, logger)},
			{Type: jobs.TaskSendEmail, Handler: jobs.NewSendEmailHandler(logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "@every 1h", Task: jobs.NewLedgerIntegrityTask()},
			{Spec: "@daily", Task: jobs.NewInventoryLowStockTask()},
			{Spec: "@every 10m", Task: jobs.NewReportsWarmupTask()},
		},
	})
	if err != nil {
		logger.Error("configure worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker shut down")
}
