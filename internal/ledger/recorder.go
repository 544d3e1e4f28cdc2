package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/atlas-erp/atlas/internal/shared"
)

// Bumper invalidates derived read-side caches after a ledger write.
type Bumper interface {
	Bump(ctx context.Context) error
}

// Recorder posts monetary events: it appends an immutable transaction and
// moves the customer's cached balance in the same database transaction.
type Recorder struct {
	repo   Repository
	audit  *shared.AuditLogger
	bumper Bumper
	logger *slog.Logger
}

// NewRecorder builds a Recorder. audit and bumper may be nil.
func NewRecorder(repo Repository, audit *shared.AuditLogger, bumper Bumper, logger *slog.Logger) *Recorder {
	return &Recorder{repo: repo, audit: audit, bumper: bumper, logger: logger}
}

// Record validates and posts one monetary event. newBalance is the
// previous balance plus debit minus credit; the transaction row carries
// the snapshot and customers.balance is set to the same value. Both
// writes commit or neither does.
func (r *Recorder) Record(ctx context.Context, input RecordInput) (*Transaction, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.Date == "" {
		input.Date = time.Now().Format("2006-01-02")
	}

	var recorded Transaction
	err := r.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		balance, err := repo.GetBalanceForUpdate(ctx, input.CustomerID)
		if err != nil {
			return err
		}
		newBalance := round2(balance + input.Debit - input.Credit)

		recorded = Transaction{
			CustomerID:  input.CustomerID,
			Kind:        input.Kind,
			Description: input.Description,
			Debit:       input.Debit,
			Credit:      input.Credit,
			Balance:     newBalance,
			Date:        input.Date,
			ReferenceID: input.ReferenceID,
			CreatedBy:   input.Actor,
		}
		id, err := repo.Append(ctx, recorded)
		if err != nil {
			return err
		}
		recorded.ID = id

		if err := repo.UpdateBalance(ctx, input.CustomerID, newBalance); err != nil {
			return fmt.Errorf("%w: balance update after append: %v", ErrPartialWrite, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if r.audit != nil {
		_ = r.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.Actor,
			Action:   "ledger.record." + string(input.Kind),
			Entity:   "transaction",
			EntityID: strconv.FormatInt(recorded.ID, 10),
			Meta: map[string]any{
				"customer_id": input.CustomerID,
				"debit":       input.Debit,
				"credit":      input.Credit,
				"balance":     recorded.Balance,
				"reference":   input.ReferenceID,
			},
		})
	}
	if r.bumper != nil {
		if err := r.bumper.Bump(ctx); err != nil && r.logger != nil {
			r.logger.Warn("bump report cache", slog.Any("error", err))
		}
	}
	return &recorded, nil
}

func validateInput(input RecordInput) error {
	if input.CustomerID == 0 {
		return fmt.Errorf("%w: customer id required", shared.ErrValidation)
	}
	if !ValidKind(input.Kind) {
		return fmt.Errorf("%w: unknown kind %q", shared.ErrValidation, input.Kind)
	}
	if input.Description == "" {
		return fmt.Errorf("%w: description required", shared.ErrValidation)
	}
	if input.Debit < 0 || input.Credit < 0 {
		return fmt.Errorf("%w: amounts must not be negative", shared.ErrValidation)
	}
	if input.Debit == 0 && input.Credit == 0 {
		return fmt.Errorf("%w: debit or credit required", shared.ErrValidation)
	}
	if input.Date != "" {
		if _, err := time.Parse("2006-01-02", input.Date); err != nil {
			return fmt.Errorf("%w: date must be YYYY-MM-DD", shared.ErrValidation)
		}
	}
	return nil
}
