package payments

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

// Repository defines data access for payments.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Payment, error)
	List(ctx context.Context, req ListPaymentsRequest) ([]Payment, int, error)
	Create(ctx context.Context, payment Payment) (int64, error)
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

const paymentColumns = `id, customer_id, order_number, amount, method, type, notes, date, created_by, created_at`

func (r *repository) Get(ctx context.Context, id int64) (*Payment, error) {
	var p Payment
	err := r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id).Scan(
		&p.ID, &p.CustomerID, &p.OrderNumber, &p.Amount, &p.Method, &p.Type, &p.Notes, &p.Date, &p.CreatedBy, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payment %d", shared.ErrNotFound, id)
		}
		return nil, fmt.Errorf("payments: get: %w", err)
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, req ListPaymentsRequest) ([]Payment, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	idx := 1
	if req.CustomerID != nil {
		where += fmt.Sprintf(" AND customer_id = $%d", idx)
		args = append(args, *req.CustomerID)
		idx++
	}
	if req.Type != nil {
		where += fmt.Sprintf(" AND type = $%d", idx)
		args = append(args, *req.Type)
		idx++
	}
	if req.Method != nil {
		where += fmt.Sprintf(" AND method = $%d", idx)
		args = append(args, *req.Method)
		idx++
	}
	if req.DateFrom != nil {
		where += fmt.Sprintf(" AND date >= $%d", idx)
		args = append(args, *req.DateFrom)
		idx++
	}
	if req.DateTo != nil {
		where += fmt.Sprintf(" AND date <= $%d", idx)
		args = append(args, *req.DateTo)
		idx++
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM payments`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("payments: count: %w", err)
	}

	query := `SELECT ` + paymentColumns + ` FROM payments` + where + ` ORDER BY date DESC, id DESC`
	if req.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", idx)
		args = append(args, req.Limit)
		idx++
	}
	if req.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", idx)
		args = append(args, req.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("payments: list: %w", err)
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.CustomerID, &p.OrderNumber, &p.Amount, &p.Method, &p.Type, &p.Notes, &p.Date, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, payment Payment) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO payments (customer_id, order_number, amount, method, type, notes, date, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id`,
		payment.CustomerID, payment.OrderNumber, payment.Amount, payment.Method, payment.Type, payment.Notes, payment.Date, payment.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("payments: create: %w", err)
	}
	return id, nil
}
