package payments

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/atlas-erp/atlas/internal/ledger"
	"github.com/atlas-erp/atlas/internal/shared"
)

// Poster posts monetary events against the customer ledger.
type Poster interface {
	Record(ctx context.Context, input ledger.RecordInput) (*ledger.Transaction, error)
}

// InvoiceResolver checks that a referenced order number exists.
type InvoiceResolver interface {
	ResolveOrderNumber(ctx context.Context, orderNumber string) error
}

// Service handles payment business rules. A payment credits the
// customer's ledger by the amount; a refund debits it. The payment row
// insert and the posting run inside one database transaction.
type Service struct {
	repo     Repository
	invoices InvoiceResolver
	poster   Poster
	audit    *shared.AuditLogger
	validate *validator.Validate
}

// NewService builds a Service. invoices may be nil, skipping order
// reference checks.
func NewService(repo Repository, invoices InvoiceResolver, poster Poster, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, invoices: invoices, poster: poster, audit: audit, validate: validator.New()}
}

// Create records a settlement and posts it against the ledger.
func (s *Service) Create(ctx context.Context, req CreatePaymentRequest, actor int64) (*Payment, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	payType := Type(req.Type)
	if !ValidType(payType) {
		return nil, fmt.Errorf("%w: unknown payment type %q", shared.ErrValidation, req.Type)
	}
	date := req.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", shared.ErrValidation)
	}
	if req.OrderNumber != nil && s.invoices != nil {
		if err := s.invoices.ResolveOrderNumber(ctx, *req.OrderNumber); err != nil {
			return nil, fmt.Errorf("verify order reference: %w", err)
		}
	}

	payment := Payment{
		CustomerID:  req.CustomerID,
		OrderNumber: req.OrderNumber,
		Amount:      req.Amount,
		Method:      req.Method,
		Type:        payType,
		Notes:       req.Notes,
		Date:        date,
		CreatedBy:   actor,
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Create(ctx, payment)
		if err != nil {
			return err
		}
		payment.ID = id

		debit, credit := 0.0, req.Amount
		description := "Payment received (" + req.Method + ")"
		if payType == TypeRefund {
			debit, credit = req.Amount, 0.0
			description = "Refund issued (" + req.Method + ")"
		}
		_, err = s.poster.Record(ctx, ledger.RecordInput{
			CustomerID:  payment.CustomerID,
			Kind:        ledger.KindPayment,
			Description: description,
			Debit:       debit,
			Credit:      credit,
			Date:        date,
			ReferenceID: id,
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
			Action:   "payment.create." + string(payType),
			Entity:   "payment",
			EntityID: strconv.FormatInt(payment.ID, 10),
			Meta:     map[string]any{"customer_id": payment.CustomerID, "amount": payment.Amount},
		})
	}
	return &payment, nil
}

// Get returns a payment by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Payment, error) {
	return s.repo.Get(ctx, id)
}

// List returns payments matching the filters plus a total count.
func (s *Service) List(ctx context.Context, req ListPaymentsRequest) ([]Payment, int, error) {
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
