package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/atlas-erp/atlas/internal/ledger"
	"github.com/atlas-erp/atlas/internal/products"
	"github.com/atlas-erp/atlas/internal/reports"
)

// NewLedgerIntegrityHandler replays every customer's ledger and logs one
// line per drifted balance. Drift is reported, never auto-repaired: a
// cached balance that disagrees with the history needs a human.
func NewLedgerIntegrityHandler(reader *ledger.Reader, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		drifted, err := reader.VerifyAll(ctx)
		if err != nil {
			return fmt.Errorf("ledger integrity: %w", err)
		}
		if len(drifted) == 0 {
			logger.Info("ledger integrity ok")
			return nil
		}
		for _, d := range drifted {
			logger.Error("ledger balance drift",
				slog.Int64("customer_id", d.CustomerID),
				slog.Float64("cached", d.Cached),
				slog.Float64("replayed", d.Replayed),
			)
		}
		return fmt.Errorf("ledger integrity: %d customer(s) drifted", len(drifted))
	}
}

// NewLowStockHandler scans products at or below their threshold and
// enqueues a notification. notify may be nil, in which case the scan
// only logs.
func NewLowStockHandler(repo products.Repository, notify *Client, notifyTo string, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		low, err := repo.ListLowStock(ctx)
		if err != nil {
			return fmt.Errorf("low stock scan: %w", err)
		}
		if len(low) == 0 {
			logger.Info("low stock scan clean")
			return nil
		}
		for _, p := range low {
			logger.Warn("product low on stock",
				slog.Int64("product_id", p.ID),
				slog.String("name", p.Name),
				slog.Int("stock", p.Stock),
				slog.Int("threshold", p.LowStockThreshold),
			)
		}
		if notify == nil || notifyTo == "" {
			return nil
		}
		body := fmt.Sprintf("%d product(s) at or below their low-stock threshold", len(low))
		_, err = notify.EnqueueSendEmail(ctx, SendEmailPayload{
			To:      notifyTo,
			Subject: "Low stock alert",
			Body:    body,
		})
		return err
	}
}

// NewReportsWarmupHandler primes the dashboard and summary caches so the
// first request after an invalidation does not pay the load.
func NewReportsWarmupHandler(service *reports.Service, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		if _, err := service.Dashboard(ctx); err != nil {
			return fmt.Errorf("warm dashboard: %w", err)
		}
		if _, err := service.Summary(ctx, reports.Filter{}); err != nil {
			return fmt.Errorf("warm summary: %w", err)
		}
		logger.Info("report caches warmed")
		return nil
	}
}

// NewSendEmailHandler processes TaskSendEmail tasks. Delivery is logged
// only until an SMTP relay is configured.
func NewSendEmailHandler(logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		logger.Info("send email",
			slog.String("to", payload.To),
			slog.String("subject", payload.Subject),
		)
		return nil
	}
}
