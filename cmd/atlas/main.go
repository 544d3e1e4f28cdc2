package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/atlas-erp/atlas/internal/app"
	"github.com/atlas-erp/atlas/internal/auth"
	"github.com/atlas-erp/atlas/internal/customers"
	"github.com/atlas-erp/atlas/internal/invoices"
	"github.com/atlas-erp/atlas/internal/ledger"
	"github.com/atlas-erp/atlas/internal/payments"
	"github.com/atlas-erp/atlas/internal/platform/db"
	"github.com/atlas-erp/atlas/internal/products"
	"github.com/atlas-erp/atlas/internal/rbac"
	"github.com/atlas-erp/atlas/internal/reports"
	"github.com/atlas-erp/atlas/internal/shared"
	"github.com/atlas-erp/atlas/internal/users"
	"github.com/atlas-erp/atlas/jobs"
)

// orderResolver adapts the invoice service to the payment service's
// order-reference check.
type orderResolver struct {
	invoices *invoices.Service
}

func (o orderResolver) ResolveOrderNumber(ctx context.Context, orderNumber string) error {
	_, err := o.invoices.GetByOrderNumber(ctx, orderNumber)
	return err
}

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
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessions := shared.NewSessionManager(redisClient, "atlas_session", cfg.SessionTTL, cfg.IsProduction())
	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	userRepo := users.NewRepository(pool)
	userService := users.NewService(userRepo)

	authService := auth.NewService(userRepo)
	authHandler := auth.NewHandler(logger, authService, sessions)
	authMiddleware := auth.Middleware{Sessions: sessions, Users: userRepo, Logger: logger}
	rbacMiddleware := rbac.Middleware{Logger: logger}

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)

	ledgerRepo := ledger.NewRepository(pool)
	recorder := ledger.NewRecorder(ledgerRepo, auditLogger, reportCache, logger)
	ledgerReader := ledger.NewReader(ledgerRepo)

	customerRepo := customers.NewRepository(pool)
	customerService := customers.NewService(customerRepo, auditLogger)

	productRepo := products.NewRepository(pool)
	productService := products.NewService(productRepo)

	invoiceRepo := invoices.NewRepository(pool)
	invoiceService := invoices.NewService(invoiceRepo, customerRepo, productRepo, recorder, auditLogger, cfg.InvoiceEditRepost)

	paymentRepo := payments.NewRepository(pool)
	paymentService := payments.NewService(paymentRepo, orderResolver{invoices: invoiceService}, recorder, auditLogger)

	reportLoader := &reports.RepoLoader{
		Customers: customerRepo,
		Products:  productRepo,
		Invoices:  invoiceRepo,
		Payments:  paymentRepo,
	}
	reportService := reports.NewService(reportLoader, reportCache)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		AuthMiddleware:  authMiddleware,
		RBACMiddleware:  rbacMiddleware,
		AuthHandler:     authHandler,
		CustomerHandler: customers.NewHandler(logger, customerService),
		ProductHandler:  products.NewHandler(logger, productService, rbacMiddleware),
		InvoiceHandler:  invoices.NewHandler(logger, invoiceService, idempotencyStore),
		PaymentHandler:  payments.NewHandler(logger, paymentService, idempotencyStore),
		LedgerHandler:   ledger.NewHandler(logger, ledgerReader, rbacMiddleware),
		ReportHandler:   reports.NewHandler(logger, reportService),
		UserHandler:     users.NewHandler(logger, userService, rbacMiddleware),
		RBACHandler:     &rbac.Handler{},
		JobHandler:      jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
