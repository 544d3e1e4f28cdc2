package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/atlas-erp/atlas/internal/shared"
)

// Reader serves the replay-based read side of the ledger.
type Reader struct {
	repo Repository
}

// NewReader builds a Reader.
func NewReader(repo Repository) *Reader {
	return &Reader{repo: repo}
}

// Transactions returns the full ledger for a customer in ascending date
// order.
func (r *Reader) Transactions(ctx context.Context, customerID int64) ([]Transaction, error) {
	return r.repo.ListByCustomer(ctx, customerID)
}

// Statement replays the customer's transactions in ascending date order
// and accumulates debit-credit into a running balance. The replayed
// closing balance is computed from the history alone; it never reads the
// cached customers.balance. Range bounds are inclusive on both ends.
func (r *Reader) Statement(ctx context.Context, customerID int64, from, to string) (*Statement, error) {
	for _, bound := range []string{from, to} {
		if bound == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", bound); err != nil {
			return nil, fmt.Errorf("%w: range bound must be YYYY-MM-DD", shared.ErrValidation)
		}
	}

	all, err := r.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	stmt := &Statement{CustomerID: customerID, From: from, To: to}
	running := 0.0
	for _, t := range all {
		running = round2(running + t.Debit - t.Credit)
		if from != "" && t.Date < from {
			stmt.OpeningBalance = running
			continue
		}
		if to != "" && t.Date > to {
			break
		}
		stmt.Lines = append(stmt.Lines, StatementLine{Transaction: t, Running: running})
	}
	if len(stmt.Lines) > 0 {
		stmt.ClosingBalance = stmt.Lines[len(stmt.Lines)-1].Running
	} else {
		stmt.ClosingBalance = stmt.OpeningBalance
	}
	return stmt, nil
}

// VerifyCustomer replays one customer's history and compares the result
// with the cached balance. A nil Drift means the invariant holds. Both
// reads run in one transaction with the customer row locked, so an
// in-flight Record cannot surface as false drift.
func (r *Reader) VerifyCustomer(ctx context.Context, customerID int64) (*Drift, error) {
	var drift *Drift
	err := r.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		cached, err := repo.GetBalanceForUpdate(ctx, customerID)
		if err != nil {
			return err
		}
		all, err := repo.ListByCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		running := 0.0
		for _, t := range all {
			running = round2(running + t.Debit - t.Credit)
		}
		if running != cached {
			drift = &Drift{CustomerID: customerID, Cached: cached, Replayed: running}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return drift, nil
}

// VerifyAll checks every customer's cached balance against the summed
// ledger and returns the customers that drifted.
func (r *Reader) VerifyAll(ctx context.Context) ([]Drift, error) {
	sums, err := r.repo.SumByCustomer(ctx)
	if err != nil {
		return nil, err
	}
	var drifted []Drift
	for _, d := range sums {
		if d.Cached != d.Replayed {
			drifted = append(drifted, d)
		}
	}
	return drifted, nil
}
