package invoices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-erp/atlas/internal/platform/db"
	"github.com/atlas-erp/atlas/internal/shared"
)

// Repository defines data access for invoices. Line items and the deposit
// sub-record are stored as JSONB alongside the invoice row.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Invoice, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*Invoice, error)
	List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error)
	Create(ctx context.Context, invoice Invoice) (int64, error)
	Update(ctx context.Context, invoice Invoice) error
	UpdateStatus(ctx context.Context, id int64, status Status, updatedBy int64) error
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

const invoiceColumns = `id, order_number, customer_id, type, items, subtotal, discount_rate, discount_amount, total, status, deposit, notes, date, created_by, updated_by, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Invoice, error) {
	row := r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	return scanInvoice(row)
}

func (r *repository) GetByOrderNumber(ctx context.Context, orderNumber string) (*Invoice, error) {
	row := r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE order_number = $1`, orderNumber)
	return scanInvoice(row)
}

func (r *repository) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	idx := 1
	if req.CustomerID != nil {
		where += fmt.Sprintf(" AND customer_id = $%d", idx)
		args = append(args, *req.CustomerID)
		idx++
	}
	if req.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, *req.Status)
		idx++
	}
	if req.Type != nil {
		where += fmt.Sprintf(" AND type = $%d", idx)
		args = append(args, *req.Type)
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
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM invoices`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("invoices: count: %w", err)
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices` + where + ` ORDER BY date DESC, id DESC`
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
		return nil, 0, fmt.Errorf("invoices: list: %w", err)
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *inv)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, invoice Invoice) (int64, error) {
	items, err := json.Marshal(invoice.Items)
	if err != nil {
		return 0, fmt.Errorf("invoices: marshal items: %w", err)
	}
	deposit, err := marshalDeposit(invoice.Deposit)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.db.QueryRow(ctx, `
		INSERT INTO invoices (order_number, customer_id, type, items, subtotal, discount_rate, discount_amount, total, status, deposit, notes, date, created_by, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13, NOW(), NOW())
		RETURNING id`,
		invoice.OrderNumber, invoice.CustomerID, invoice.Type, items,
		invoice.Subtotal, invoice.DiscountRate, invoice.DiscountAmount, invoice.Total,
		invoice.Status, deposit, invoice.Notes, invoice.Date, invoice.CreatedBy,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("%w: order number %s", shared.ErrDuplicate, invoice.OrderNumber)
		}
		return 0, fmt.Errorf("invoices: create: %w", err)
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, invoice Invoice) error {
	items, err := json.Marshal(invoice.Items)
	if err != nil {
		return fmt.Errorf("invoices: marshal items: %w", err)
	}
	deposit, err := marshalDeposit(invoice.Deposit)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE invoices
		SET items = $2, subtotal = $3, discount_amount = $4, total = $5, deposit = $6, notes = $7, date = $8, updated_by = $9, updated_at = NOW()
		WHERE id = $1`,
		invoice.ID, items, invoice.Subtotal, invoice.DiscountAmount, invoice.Total,
		deposit, invoice.Notes, invoice.Date, invoice.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("invoices: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: invoice %d", shared.ErrNotFound, invoice.ID)
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status, updatedBy int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE invoices SET status = $2, updated_by = $3, updated_at = NOW() WHERE id = $1`, id, status, updatedBy)
	if err != nil {
		return fmt.Errorf("invoices: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: invoice %d", shared.ErrNotFound, id)
	}
	return nil
}

func marshalDeposit(d *Deposit) ([]byte, error) {
	if d == nil {
		return nil, nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("invoices: marshal deposit: %w", err)
	}
	return b, nil
}

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	var items, deposit []byte
	err := row.Scan(
		&inv.ID, &inv.OrderNumber, &inv.CustomerID, &inv.Type, &items,
		&inv.Subtotal, &inv.DiscountRate, &inv.DiscountAmount, &inv.Total,
		&inv.Status, &deposit, &inv.Notes, &inv.Date,
		&inv.CreatedBy, &inv.UpdatedBy, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: invoice", shared.ErrNotFound)
		}
		return nil, fmt.Errorf("invoices: scan: %w", err)
	}
	if err := json.Unmarshal(items, &inv.Items); err != nil {
		return nil, fmt.Errorf("invoices: unmarshal items: %w", err)
	}
	if len(deposit) > 0 {
		inv.Deposit = &Deposit{}
		if err := json.Unmarshal(deposit, inv.Deposit); err != nil {
			return nil, fmt.Errorf("invoices: unmarshal deposit: %w", err)
		}
	}
	return &inv, nil
}
