package invoices

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/atlas-erp/atlas/internal/customers"
	"github.com/atlas-erp/atlas/internal/ledger"
	"github.com/atlas-erp/atlas/internal/products"
	"github.com/atlas-erp/atlas/internal/shared"
)

// Poster posts monetary events against the customer ledger.
type Poster interface {
	Record(ctx context.Context, input ledger.RecordInput) (*ledger.Transaction, error)
}

// Service handles invoice business rules. Creating a sale posts a ledger
// debit for the total; creating a return posts a credit. The insert and
// the posting run inside one database transaction.
type Service struct {
	repo       Repository
	customers  customers.Repository
	products   products.Repository
	poster     Poster
	audit      *shared.AuditLogger
	validate   *validator.Validate
	editRepost bool
}

// NewService builds a Service. editRepost selects the edit policy: when
// false (the default), an edit that changes the invoice total is
// rejected; when true, the delta is posted as a correcting transaction.
func NewService(repo Repository, customerRepo customers.Repository, productRepo products.Repository, poster Poster, audit *shared.AuditLogger, editRepost bool) *Service {
	return &Service{
		repo:       repo,
		customers:  customerRepo,
		products:   productRepo,
		poster:     poster,
		audit:      audit,
		validate:   validator.New(),
		editRepost: editRepost,
	}
}

const createAttempts = 3

// Create freezes the customer's discount rate, computes totals
// server-side and posts the invoice against the ledger. Order numbers
// are derived from the creation timestamp; a duplicate collision is
// retried with a fresh number.
func (s *Service) Create(ctx context.Context, req CreateInvoiceRequest, actor int64) (*Invoice, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	invType := Type(req.Type)
	if !ValidType(invType) {
		return nil, fmt.Errorf("%w: unknown invoice type %q", shared.ErrValidation, req.Type)
	}
	date := req.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", shared.ErrValidation)
	}

	customer, err := s.customers.Get(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("verify customer: %w", err)
	}

	items, subtotal, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	discountAmount := round2(subtotal * customer.DiscountRate / 100)
	total := round2(subtotal - discountAmount)

	invoice := Invoice{
		CustomerID:     req.CustomerID,
		Type:           invType,
		Items:          items,
		Subtotal:       subtotal,
		DiscountRate:   customer.DiscountRate,
		DiscountAmount: discountAmount,
		Total:          total,
		Status:         StatusPending,
		Notes:          req.Notes,
		Date:           date,
		CreatedBy:      actor,
		UpdatedBy:      actor,
	}
	if req.Deposit != nil {
		invoice.Deposit = &Deposit{Amount: req.Deposit.Amount, Method: req.Deposit.Method, Paid: req.Deposit.Paid}
	}

	for attempt := 0; attempt < createAttempts; attempt++ {
		invoice.OrderNumber = generateOrderNumber(time.Now())
		err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
			id, err := repo.Create(ctx, invoice)
			if err != nil {
				return err
			}
			invoice.ID = id

			debit, credit := 0.0, 0.0
			kind := ledger.KindInvoice
			description := "Invoice " + invoice.OrderNumber
			if invType == TypeReturn {
				kind = ledger.KindReturn
				description = "Return " + invoice.OrderNumber
				credit = total
			} else {
				debit = total
			}
			_, err = s.poster.Record(ctx, ledger.RecordInput{
				CustomerID:  invoice.CustomerID,
				Kind:        kind,
				Description: description,
				Debit:       debit,
				Credit:      credit,
				Date:        date,
				ReferenceID: id,
				Actor:       actor,
			})
			return err
		})
		if errors.Is(err, shared.ErrDuplicate) {
			continue
		}
		break
	}
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actor,
			Action:   "invoice.create." + string(invType),
			Entity:   "invoice",
			EntityID: strconv.FormatInt(invoice.ID, 10),
			Meta:     map[string]any{"order_number": invoice.OrderNumber, "total": invoice.Total},
		})
	}
	return &invoice, nil
}

// Update edits an invoice. Metadata (notes, deposit, date) is always
// editable. Item edits recompute totals with the frozen discount rate;
// a resulting total change is rejected unless repost-on-edit is enabled,
// in which case the delta is posted as one correcting transaction.
func (s *Service) Update(ctx context.Context, id int64, req UpdateInvoiceRequest, actor int64) (*Invoice, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	invoice, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status == StatusCancelled {
		return nil, fmt.Errorf("%w: cancelled invoices cannot be edited", shared.ErrConflict)
	}

	if req.Date != nil {
		if _, err := time.Parse("2006-01-02", *req.Date); err != nil {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", shared.ErrValidation)
		}
		invoice.Date = *req.Date
	}
	if req.Notes != nil {
		invoice.Notes = req.Notes
	}
	if req.Deposit != nil {
		invoice.Deposit = &Deposit{Amount: req.Deposit.Amount, Method: req.Deposit.Method, Paid: req.Deposit.Paid}
	}

	oldTotal := invoice.Total
	if req.Items != nil {
		items, subtotal, err := s.resolveItems(ctx, req.Items)
		if err != nil {
			return nil, err
		}
		invoice.Items = items
		invoice.Subtotal = subtotal
		invoice.DiscountAmount = round2(subtotal * invoice.DiscountRate / 100)
		invoice.Total = round2(subtotal - invoice.DiscountAmount)
	}
	delta := round2(invoice.Total - oldTotal)
	if delta != 0 && !s.editRepost {
		return nil, fmt.Errorf("%w: invoice totals are locked after posting", shared.ErrConflict)
	}
	invoice.UpdatedBy = actor

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Update(ctx, *invoice); err != nil {
			return err
		}
		if delta == 0 {
			return nil
		}
		// Correcting entry: a higher sale total debits the delta, a
		// lower one credits it; mirrored for returns.
		debit, credit := 0.0, 0.0
		switch {
		case invoice.Type == TypeSale && delta > 0:
			debit = delta
		case invoice.Type == TypeSale:
			credit = -delta
		case delta > 0:
			credit = delta
		default:
			debit = -delta
		}
		kind := ledger.KindInvoice
		if invoice.Type == TypeReturn {
			kind = ledger.KindReturn
		}
		_, err := s.poster.Record(ctx, ledger.RecordInput{
			CustomerID:  invoice.CustomerID,
			Kind:        kind,
			Description: "Correction " + invoice.OrderNumber,
			Debit:       debit,
			Credit:      credit,
			Date:        invoice.Date,
			ReferenceID: invoice.ID,
			Actor:       actor,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actor,
			Action:   "invoice.update",
			Entity:   "invoice",
			EntityID: strconv.FormatInt(invoice.ID, 10),
			Meta:     map[string]any{"order_number": invoice.OrderNumber, "delta": delta},
		})
	}
	return invoice, nil
}

// UpdateStatus moves a pending invoice to paid, partial, or cancelled.
func (s *Service) UpdateStatus(ctx context.Context, id int64, req UpdateStatusRequest, actor int64) (*Invoice, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	target := Status(req.Status)
	if !ValidStatus(target) {
		return nil, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, req.Status)
	}

	invoice, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !invoice.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: cannot move invoice from %s to %s", shared.ErrValidation, invoice.Status, target)
	}
	if err := s.repo.UpdateStatus(ctx, id, target, actor); err != nil {
		return nil, err
	}
	invoice.Status = target
	invoice.UpdatedBy = actor

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actor,
			Action:   "invoice.status." + string(target),
			Entity:   "invoice",
			EntityID: strconv.FormatInt(id, 10),
		})
	}
	return invoice, nil
}

// Get returns an invoice by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Invoice, error) {
	return s.repo.Get(ctx, id)
}

// GetByOrderNumber returns an invoice by its order number.
func (s *Service) GetByOrderNumber(ctx context.Context, orderNumber string) (*Invoice, error) {
	return s.repo.GetByOrderNumber(ctx, orderNumber)
}

// List returns invoices matching the filters plus a total count.
func (s *Service) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	for _, bound := range []*string{req.DateFrom, req.DateTo} {
		if bound == nil {
			continue
		}
		if _, err := time.Parse("2006-01-02", *bound); err != nil {
			return nil, 0, fmt.Errorf("%w: date filter must be YYYY-MM-DD", shared.ErrValidation)
		}
	}
	return s.repo.List(ctx, req)
}

// resolveItems freezes product names and prices onto the invoice lines.
// The unit price defaults to the product's current price; an explicit
// price in the request overrides it.
func (s *Service) resolveItems(ctx context.Context, reqs []LineItemRequest) ([]LineItem, float64, error) {
	items := make([]LineItem, 0, len(reqs))
	subtotal := 0.0
	for _, lr := range reqs {
		product, err := s.products.Get(ctx, lr.ProductID)
		if err != nil {
			return nil, 0, fmt.Errorf("verify product %d: %w", lr.ProductID, err)
		}
		price := product.Price
		if lr.UnitPrice != nil {
			price = *lr.UnitPrice
		}
		lineTotal := round2(lr.Quantity * price)
		items = append(items, LineItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  lr.Quantity,
			UnitPrice: price,
			Total:     lineTotal,
		})
		subtotal = round2(subtotal + lineTotal)
	}
	return items, subtotal, nil
}

// generateOrderNumber derives a number from the creation timestamp. The
// millisecond suffix is what makes a same-second collision retryable.
func generateOrderNumber(now time.Time) string {
	return fmt.Sprintf("SO-%s-%03d", now.Format("20060102-150405"), now.Nanosecond()/1e6)
}
