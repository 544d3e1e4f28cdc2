package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-erp/atlas/internal/platform/db"
	"github.com/atlas-erp/atlas/internal/shared"
)

// Repository defines data access for the ledger. Record-time methods are
// meant to run inside WithTx so the append and the balance update commit
// as one unit.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	// GetBalanceForUpdate reads the customer's cached balance, locking the
	// row for the duration of the enclosing transaction. The lock is the
	// per-customer serialization point for ledger writes.
	GetBalanceForUpdate(ctx context.Context, customerID int64) (float64, error)
	Append(ctx context.Context, tx Transaction) (int64, error)
	UpdateBalance(ctx context.Context, customerID int64, balance float64) error

	ListByCustomer(ctx context.Context, customerID int64) ([]Transaction, error)
	// SumByCustomer aggregates debit-credit per customer over the whole
	// ledger, alongside the cached balance, for integrity verification.
	SumByCustomer(ctx context.Context) ([]Drift, error)
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository builds the postgres-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(db.ContextWithTx(ctx, tx), &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) GetBalanceForUpdate(ctx context.Context, customerID int64) (float64, error) {
	var balance float64
	err := r.db.QueryRow(ctx, `SELECT balance FROM customers WHERE id = $1 FOR UPDATE`, customerID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: customer %d", shared.ErrNotFound, customerID)
		}
		return 0, fmt.Errorf("ledger: get balance: %w", err)
	}
	return balance, nil
}

func (r *repository) Append(ctx context.Context, tx Transaction) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO transactions (customer_id, kind, description, debit, credit, balance, date, reference_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING id`,
		tx.CustomerID, tx.Kind, tx.Description, tx.Debit, tx.Credit, tx.Balance, tx.Date, tx.ReferenceID, tx.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ledger: append: %w", err)
	}
	return id, nil
}

func (r *repository) UpdateBalance(ctx context.Context, customerID int64, balance float64) error {
	tag, err := r.db.Exec(ctx, `UPDATE customers SET balance = $2, updated_at = NOW() WHERE id = $1`, customerID, balance)
	if err != nil {
		return fmt.Errorf("ledger: update balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: customer %d", shared.ErrNotFound, customerID)
	}
	return nil
}

const transactionColumns = `id, customer_id, kind, description, debit, credit, balance, date, reference_id, created_by, created_at`

func (r *repository) ListByCustomer(ctx context.Context, customerID int64) ([]Transaction, error) {
	rows, err := r.db.Query(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE customer_id = $1 ORDER BY date, id`, customerID)
	if err != nil {
		return nil, fmt.Errorf("ledger: list: %w", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.CustomerID, &t.Kind, &t.Description, &t.Debit, &t.Credit, &t.Balance, &t.Date, &t.ReferenceID, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repository) SumByCustomer(ctx context.Context) ([]Drift, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.balance, COALESCE(SUM(t.debit - t.credit), 0)
		FROM customers c
		LEFT JOIN transactions t ON t.customer_id = c.id
		GROUP BY c.id, c.balance
		ORDER BY c.id`)
	if err != nil {
		return nil, fmt.Errorf("ledger: sum by customer: %w", err)
	}
	defer rows.Close()

	var out []Drift
	for rows.Next() {
		var d Drift
		if err := rows.Scan(&d.CustomerID, &d.Cached, &d.Replayed); err != nil {
			return nil, err
		}
		d.Replayed = round2(d.Replayed)
		out = append(out, d)
	}
	return out, rows.Err()
}
