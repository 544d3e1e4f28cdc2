package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskLedgerIntegrity replays every customer's ledger and reports
	// drift against the cached balances.
	TaskLedgerIntegrity = "ledger:integrity"
	// TaskInventoryLowStock scans for products at or below their
	// low-stock threshold.
	TaskInventoryLowStock = "inventory:lowstock"
	// TaskReportsWarmup primes the dashboard and summary caches.
	TaskReportsWarmup = "reports:warmup"
	// TaskSendEmail delivers a transactional notification.
	TaskSendEmail = "mail:send"
)

// NewLedgerIntegrityTask constructs the integrity scan task.
func NewLedgerIntegrityTask() *asynq.Task {
	return asynq.NewTask(TaskLedgerIntegrity, nil)
}

// NewInventoryLowStockTask constructs the low-stock scan task.
func NewInventoryLowStockTask() *asynq.Task {
	return asynq.NewTask(TaskInventoryLowStock, nil)
}

// NewReportsWarmupTask constructs the cache warmup task.
func NewReportsWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskReportsWarmup, nil)
}

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs a send-email task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSendEmail, data), nil
}
