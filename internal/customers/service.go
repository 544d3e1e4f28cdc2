package customers

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/atlas-erp/atlas/internal/shared"
)

// Service handles customer business rules.
type Service struct {
	repo     Repository
	audit    *shared.AuditLogger
	validate *validator.Validate
}

// NewService builds a Service. The audit logger may be nil in tests.
func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit, validate: validator.New()}
}

// Create registers a new customer with a zero opening balance.
func (s *Service) Create(ctx context.Context, req CreateCustomerRequest, createdBy int64) (*Customer, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	category := Category(req.Category)
	if !ValidCategory(category) {
		return nil, fmt.Errorf("%w: unknown category %q", shared.ErrValidation, req.Category)
	}

	customer := Customer{
		Name:         req.Name,
		Category:     category,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		DiscountRate: req.DiscountRate,
		CreatedBy:    createdBy,
	}
	id, err := s.repo.Create(ctx, customer)
	if err != nil {
		return nil, err
	}
	customer.ID = id
	return &customer, nil
}

// Update applies partial contact and pricing changes. Changing the
// discount rate does not affect existing invoices: the rate is frozen per
// invoice at creation time.
func (s *Service) Update(ctx context.Context, id int64, req UpdateCustomerRequest) (*Customer, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	customer, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Category != nil {
		category := Category(*req.Category)
		if !ValidCategory(category) {
			return nil, fmt.Errorf("%w: unknown category %q", shared.ErrValidation, *req.Category)
		}
		customer.Category = category
	}
	if req.Email != nil {
		customer.Email = req.Email
	}
	if req.Phone != nil {
		customer.Phone = req.Phone
	}
	if req.Address != nil {
		customer.Address = req.Address
	}
	if req.DiscountRate != nil {
		customer.DiscountRate = *req.DiscountRate
	}

	if err := s.repo.Update(ctx, *customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// Delete removes a customer. Customers with ledger transactions are
// protected: the transaction history is the source of truth for balances
// and must never lose its referent.
func (s *Service) Delete(ctx context.Context, id int64, actor shared.Actor) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	referenced, err := s.repo.HasTransactions(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		if s.audit != nil {
			_ = s.audit.Record(ctx, shared.AuditLog{
				ActorID:  actor.ID,
				Action:   "customer.delete.rejected",
				Entity:   "customer",
				EntityID: fmt.Sprintf("%d", id),
				Meta:     map[string]any{"reason": "has transactions"},
			})
		}
		return fmt.Errorf("%w: customer has ledger transactions", shared.ErrConflict)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actor.ID,
			Action:   "customer.delete",
			Entity:   "customer",
			EntityID: fmt.Sprintf("%d", id),
		})
	}
	return nil
}

// Get returns a customer by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

// List returns customers matching the filters plus a total count.
func (s *Service) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	return s.repo.List(ctx, req)
}
