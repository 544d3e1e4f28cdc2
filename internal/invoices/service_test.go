package invoices

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlas-erp/atlas/internal/customers"
	"github.com/atlas-erp/atlas/internal/ledger"
	"github.com/atlas-erp/atlas/internal/products"
	"github.com/atlas-erp/atlas/internal/shared"
)

type memoryInvoiceRepo struct {
	invoices map[int64]Invoice
	nextID   int64

	duplicateCreates int
}

func newMemoryInvoiceRepo() *memoryInvoiceRepo {
	return &memoryInvoiceRepo{invoices: map[int64]Invoice{}, nextID: 1}
}

func (m *memoryInvoiceRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	scratch := &memoryInvoiceRepo{
		invoices:         make(map[int64]Invoice, len(m.invoices)),
		nextID:           m.nextID,
		duplicateCreates: m.duplicateCreates,
	}
	for id, inv := range m.invoices {
		scratch.invoices[id] = inv
	}
	if err := fn(ctx, scratch); err != nil {
		m.duplicateCreates = scratch.duplicateCreates
		return err
	}
	m.invoices = scratch.invoices
	m.nextID = scratch.nextID
	m.duplicateCreates = scratch.duplicateCreates
	return nil
}

func (m *memoryInvoiceRepo) Get(_ context.Context, id int64) (*Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return nil, fmt.Errorf("%w: invoice %d", shared.ErrNotFound, id)
	}
	return &inv, nil
}

func (m *memoryInvoiceRepo) GetByOrderNumber(_ context.Context, orderNumber string) (*Invoice, error) {
	for _, inv := range m.invoices {
		if inv.OrderNumber == orderNumber {
			return &inv, nil
		}
	}
	return nil, fmt.Errorf("%w: invoice %s", shared.ErrNotFound, orderNumber)
}

func (m *memoryInvoiceRepo) List(_ context.Context, _ ListInvoicesRequest) ([]Invoice, int, error) {
	var out []Invoice
	for _, inv := range m.invoices {
		out = append(out, inv)
	}
	return out, len(out), nil
}

func (m *memoryInvoiceRepo) Create(_ context.Context, invoice Invoice) (int64, error) {
	if m.duplicateCreates > 0 {
		m.duplicateCreates--
		return 0, fmt.Errorf("%w: order number %s", shared.ErrDuplicate, invoice.OrderNumber)
	}
	invoice.ID = m.nextID
	m.nextID++
	m.invoices[invoice.ID] = invoice
	return invoice.ID, nil
}

func (m *memoryInvoiceRepo) Update(_ context.Context, invoice Invoice) error {
	if _, ok := m.invoices[invoice.ID]; !ok {
		return fmt.Errorf("%w: invoice %d", shared.ErrNotFound, invoice.ID)
	}
	m.invoices[invoice.ID] = invoice
	return nil
}

func (m *memoryInvoiceRepo) UpdateStatus(_ context.Context, id int64, status Status, updatedBy int64) error {
	inv, ok := m.invoices[id]
	if !ok {
		return fmt.Errorf("%w: invoice %d", shared.ErrNotFound, id)
	}
	inv.Status = status
	inv.UpdatedBy = updatedBy
	m.invoices[id] = inv
	return nil
}

type stubCustomerRepo struct {
	customers map[int64]customers.Customer
}

func (s *stubCustomerRepo) Get(_ context.Context, id int64) (*customers.Customer, error) {
	c, ok := s.customers[id]
	if !ok {
		return nil, fmt.Errorf("%w: customer %d", shared.ErrNotFound, id)
	}
	return &c, nil
}

func (s *stubCustomerRepo) List(context.Context, customers.ListCustomersRequest) ([]customers.Customer, int, error) {
	return nil, 0, errors.New("not implemented")
}

func (s *stubCustomerRepo) Create(context.Context, customers.Customer) (int64, error) {
	return 0, errors.New("not implemented")
}

func (s *stubCustomerRepo) Update(context.Context, customers.Customer) error {
	return errors.New("not implemented")
}

func (s *stubCustomerRepo) Delete(context.Context, int64) error {
	return errors.New("not implemented")
}

func (s *stubCustomerRepo) HasTransactions(context.Context, int64) (bool, error) {
	return false, nil
}

type stubProductRepo struct {
	products map[int64]products.Product
}

func (s *stubProductRepo) Get(_ context.Context, id int64) (*products.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: product %d", shared.ErrNotFound, id)
	}
	return &p, nil
}

func (s *stubProductRepo) List(context.Context, products.ListProductsRequest) ([]products.Product, int, error) {
	return nil, 0, errors.New("not implemented")
}

func (s *stubProductRepo) ListLowStock(context.Context) ([]products.Product, error) {
	return nil, errors.New("not implemented")
}

func (s *stubProductRepo) Create(context.Context, products.Product) (int64, error) {
	return 0, errors.New("not implemented")
}

func (s *stubProductRepo) Update(context.Context, products.Product) error {
	return errors.New("not implemented")
}

func (s *stubProductRepo) Delete(context.Context, int64) error {
	return errors.New("not implemented")
}

type fakePoster struct {
	posted []ledger.RecordInput
	fail   bool
}

func (f *fakePoster) Record(_ context.Context, input ledger.RecordInput) (*ledger.Transaction, error) {
	if f.fail {
		return nil, errors.New("ledger unavailable")
	}
	f.posted = append(f.posted, input)
	return &ledger.Transaction{ID: int64(len(f.posted))}, nil
}

func newTestService(t *testing.T, editRepost bool) (*Service, *memoryInvoiceRepo, *fakePoster) {
	t.Helper()
	repo := newMemoryInvoiceRepo()
	poster := &fakePoster{}
	custRepo := &stubCustomerRepo{customers: map[int64]customers.Customer{
		1: {ID: 1, Name: "Harbor Works", Category: customers.CategoryShops, DiscountRate: 5},
	}}
	prodRepo := &stubProductRepo{products: map[int64]products.Product{
		10: {ID: 10, Name: "Steel Bracket", Price: 150},
		11: {ID: 11, Name: "Hinge Set", Price: 40},
	}}
	svc := NewService(repo, custRepo, prodRepo, poster, nil, editRepost)
	return svc, repo, poster
}

func TestCreateSaleFreezesDiscountAndPostsDebit(t *testing.T) {
	svc, repo, poster := newTestService(t, false)

	invoice, err := svc.Create(context.Background(), CreateInvoiceRequest{
		CustomerID: 1,
		Type:       "sale",
		Items:      []LineItemRequest{{ProductID: 10, Quantity: 2}},
		Date:       "2025-03-01",
	}, 7)
	require.NoError(t, err)
	require.Equal(t, 300.0, invoice.Subtotal)
	require.Equal(t, 5.0, invoice.DiscountRate)
	require.Equal(t, 15.0, invoice.DiscountAmount)
	require.Equal(t, 285.0, invoice.Total)
	require.Equal(t, StatusPending, invoice.Status)
	require.True(t, strings.HasPrefix(invoice.OrderNumber, "SO-"))
	require.Equal(t, "Steel Bracket", invoice.Items[0].Name)
	require.Len(t, repo.invoices, 1)

	require.Len(t, poster.posted, 1)
	require.Equal(t, ledger.KindInvoice, poster.posted[0].Kind)
	require.Equal(t, 285.0, poster.posted[0].Debit)
	require.Equal(t, 0.0, poster.posted[0].Credit)
	require.Equal(t, invoice.ID, poster.posted[0].ReferenceID)
}

func TestCreateReturnPostsCredit(t *testing.T) {
	svc, _, poster := newTestService(t, false)

	invoice, err := svc.Create(context.Background(), CreateInvoiceRequest{
		CustomerID: 1,
		Type:       "return",
		Items:      []LineItemRequest{{ProductID: 11, Quantity: 1}},
	}, 7)
	require.NoError(t, err)
	require.Equal(t, 38.0, invoice.Total)

	require.Len(t, poster.posted, 1)
	require.Equal(t, ledger.KindReturn, poster.posted[0].Kind)
	require.Equal(t, 38.0, poster.posted[0].Credit)
	require.Equal(t, 0.0, poster.posted[0].Debit)
}

func TestCreateRollsBackInvoiceOnLedgerFailure(t *testing.T) {
	svc, repo, poster := newTestService(t, false)
	poster.fail = true

	_, err := svc.Create(context.Background(), CreateInvoiceRequest{
		CustomerID: 1,
		Type:       "sale",
		Items:      []LineItemRequest{{ProductID: 10, Quantity: 1}},
	}, 7)
	require.Error(t, err)
	require.Empty(t, repo.invoices)
}

func TestCreateRetriesOrderNumberCollision(t *testing.T) {
	svc, repo, _ := newTestService(t, false)
	repo.duplicateCreates = 1

	invoice, err := svc.Create(context.Background(), CreateInvoiceRequest{
		CustomerID: 1,
		Type:       "sale",
		Items:      []LineItemRequest{{ProductID: 10, Quantity: 1}},
	}, 7)
	require.NoError(t, err)
	require.Len(t, repo.invoices, 1)
	require.NotEmpty(t, invoice.OrderNumber)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(t, false)

	cases := []struct {
		name string
		req  CreateInvoiceRequest
	}{
		{"unknown type", CreateInvoiceRequest{CustomerID: 1, Type: "quote", Items: []LineItemRequest{{ProductID: 10, Quantity: 1}}}},
		{"no items", CreateInvoiceRequest{CustomerID: 1, Type: "sale"}},
		{"zero quantity", CreateInvoiceRequest{CustomerID: 1, Type: "sale", Items: []LineItemRequest{{ProductID: 10}}}},
		{"bad date", CreateInvoiceRequest{CustomerID: 1, Type: "sale", Items: []LineItemRequest{{ProductID: 10, Quantity: 1}}, Date: "01/03/2025"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.req, 7)
			require.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestCreateUnknownProduct(t *testing.T) {
	svc, _, _ := newTestService(t, false)

	_, err := svc.Create(context.Background(), CreateInvoiceRequest{
		CustomerID: 1,
		Type:       "sale",
		Items:      []LineItemRequest{{ProductID: 99, Quantity: 1}},
	}, 7)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestStatusTransitions(t *testing.T) {
	svc, _, _ := newTestService(t, false)
	invoice, err := svc.Create(context.Background(), CreateInvoiceRequest{
		CustomerID: 1,
		Type:       "sale",
		Items:      []LineItemRequest{{ProductID: 10, Quantity: 1}},
	}, 7)
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), invoice.ID, UpdateStatusRequest{Status: "paid"}, 7)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, updated.Status)

	// Settled invoices do not move again.
	_, err = svc.UpdateStatus(context.Background(), invoice.ID, UpdateStatusRequest{Status: "cancelled"}, 7)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestEditMetadataKeepsTotals(t *testing.T) {
	svc, _, poster := newTestService(t, false)
	invoice, err := svc.Create(context.Background(), CreateInvoiceRequest{
		CustomerID: 1,
		Type:       "sale",
		Items:      []LineItemRequest{{ProductID: 10, Quantity: 2}},
	}, 7)
	require.NoError(t, err)
	postsAfterCreate := len(poster.posted)

	notes := "delivered to warehouse B"
	updated, err := svc.Update(context.Background(), invoice.ID, UpdateInvoiceRequest{Notes: &notes}, 8)
	require.NoError(t, err)
	require.Equal(t, invoice.Total, updated.Total)
	require.Equal(t, &notes, updated.Notes)
	require.Equal(t, int64(8), updated.UpdatedBy)
	require.Len(t, poster.posted, postsAfterCreate)
}

func TestEditChangingTotalRejectedByDefault(t *testing.T) {
	svc, _, _ := newTestService(t, false)
	invoice, err := svc.Create(context.Background(), CreateInvoiceRequest{
		CustomerID: 1,
		Type:       "sale",
		Items:      []LineItemRequest{{ProductID: 10, Quantity: 2}},
	}, 7)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), invoice.ID, UpdateInvoiceRequest{
		Items: []LineItemRequest{{ProductID: 10, Quantity: 3}},
	}, 7)
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestEditRepostsDeltaWhenEnabled(t *testing.T) {
	svc, _, poster := newTestService(t, true)
	invoice, err := svc.Create(context.Background(), CreateInvoiceRequest{
		CustomerID: 1,
		Type:       "sale",
		Items:      []LineItemRequest{{ProductID: 10, Quantity: 2}},
	}, 7)
	require.NoError(t, err)
	require.Equal(t, 285.0, invoice.Total)

	// 3x150 at 5% discount totals 427.50, a 142.50 increase.
	updated, err := svc.Update(context.Background(), invoice.ID, UpdateInvoiceRequest{
		Items: []LineItemRequest{{ProductID: 10, Quantity: 3}},
	}, 7)
	require.NoError(t, err)
	require.Equal(t, 427.5, updated.Total)

	last := poster.posted[len(poster.posted)-1]
	require.Equal(t, 142.5, last.Debit)
	require.Equal(t, 0.0, last.Credit)
	require.Equal(t, "Correction "+invoice.OrderNumber, last.Description)

	// Shrinking the total credits the delta back.
	updated, err = svc.Update(context.Background(), invoice.ID, UpdateInvoiceRequest{
		Items: []LineItemRequest{{ProductID: 10, Quantity: 1}},
	}, 7)
	require.NoError(t, err)
	require.Equal(t, 142.5, updated.Total)

	last = poster.posted[len(poster.posted)-1]
	require.Equal(t, 0.0, last.Debit)
	require.Equal(t, 285.0, last.Credit)
}
