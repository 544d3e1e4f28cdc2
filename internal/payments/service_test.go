package payments

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlas-erp/atlas/internal/ledger"
	"github.com/atlas-erp/atlas/internal/shared"
)

type memoryPaymentRepo struct {
	payments map[int64]Payment
	nextID   int64
}

func newMemoryPaymentRepo() *memoryPaymentRepo {
	return &memoryPaymentRepo{payments: map[int64]Payment{}, nextID: 1}
}

func (m *memoryPaymentRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	scratch := &memoryPaymentRepo{payments: make(map[int64]Payment, len(m.payments)), nextID: m.nextID}
	for id, p := range m.payments {
		scratch.payments[id] = p
	}
	if err := fn(ctx, scratch); err != nil {
		return err
	}
	m.payments = scratch.payments
	m.nextID = scratch.nextID
	return nil
}

func (m *memoryPaymentRepo) Get(_ context.Context, id int64) (*Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, fmt.Errorf("%w: payment %d", shared.ErrNotFound, id)
	}
	return &p, nil
}

func (m *memoryPaymentRepo) List(_ context.Context, _ ListPaymentsRequest) ([]Payment, int, error) {
	var out []Payment
	for _, p := range m.payments {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *memoryPaymentRepo) Create(_ context.Context, payment Payment) (int64, error) {
	payment.ID = m.nextID
	m.nextID++
	m.payments[payment.ID] = payment
	return payment.ID, nil
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

type stubResolver struct {
	known map[string]bool
}

func (s *stubResolver) ResolveOrderNumber(_ context.Context, orderNumber string) error {
	if !s.known[orderNumber] {
		return fmt.Errorf("%w: invoice %s", shared.ErrNotFound, orderNumber)
	}
	return nil
}

func TestCreatePaymentPostsCredit(t *testing.T) {
	repo := newMemoryPaymentRepo()
	poster := &fakePoster{}
	svc := NewService(repo, nil, poster, nil)

	payment, err := svc.Create(context.Background(), CreatePaymentRequest{
		CustomerID: 1,
		Amount:     285,
		Method:     "cash",
		Type:       "payment",
		Date:       "2025-03-10",
	}, 7)
	require.NoError(t, err)
	require.Equal(t, TypePayment, payment.Type)
	require.Len(t, repo.payments, 1)

	require.Len(t, poster.posted, 1)
	require.Equal(t, ledger.KindPayment, poster.posted[0].Kind)
	require.Equal(t, 285.0, poster.posted[0].Credit)
	require.Equal(t, 0.0, poster.posted[0].Debit)
	require.Equal(t, payment.ID, poster.posted[0].ReferenceID)
}

func TestCreateRefundPostsDebit(t *testing.T) {
	repo := newMemoryPaymentRepo()
	poster := &fakePoster{}
	svc := NewService(repo, nil, poster, nil)

	_, err := svc.Create(context.Background(), CreatePaymentRequest{
		CustomerID: 1,
		Amount:     50,
		Method:     "bank",
		Type:       "refund",
	}, 7)
	require.NoError(t, err)

	require.Len(t, poster.posted, 1)
	require.Equal(t, 50.0, poster.posted[0].Debit)
	require.Equal(t, 0.0, poster.posted[0].Credit)
}

func TestCreateRollsBackPaymentOnLedgerFailure(t *testing.T) {
	repo := newMemoryPaymentRepo()
	poster := &fakePoster{fail: true}
	svc := NewService(repo, nil, poster, nil)

	_, err := svc.Create(context.Background(), CreatePaymentRequest{
		CustomerID: 1,
		Amount:     100,
		Method:     "cash",
		Type:       "payment",
	}, 7)
	require.Error(t, err)
	require.Empty(t, repo.payments)
}

func TestCreateChecksOrderReference(t *testing.T) {
	repo := newMemoryPaymentRepo()
	poster := &fakePoster{}
	resolver := &stubResolver{known: map[string]bool{"SO-20250301-101502-001": true}}
	svc := NewService(repo, resolver, poster, nil)

	known := "SO-20250301-101502-001"
	_, err := svc.Create(context.Background(), CreatePaymentRequest{
		CustomerID:  1,
		OrderNumber: &known,
		Amount:      100,
		Method:      "cash",
		Type:        "payment",
	}, 7)
	require.NoError(t, err)

	unknown := "SO-19990101-000000-000"
	_, err = svc.Create(context.Background(), CreatePaymentRequest{
		CustomerID:  1,
		OrderNumber: &unknown,
		Amount:      100,
		Method:      "cash",
		Type:        "payment",
	}, 7)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreatePaymentValidation(t *testing.T) {
	svc := NewService(newMemoryPaymentRepo(), nil, &fakePoster{}, nil)

	cases := []struct {
		name string
		req  CreatePaymentRequest
	}{
		{"zero amount", CreatePaymentRequest{CustomerID: 1, Method: "cash", Type: "payment"}},
		{"negative amount", CreatePaymentRequest{CustomerID: 1, Amount: -5, Method: "cash", Type: "payment"}},
		{"missing method", CreatePaymentRequest{CustomerID: 1, Amount: 10, Type: "payment"}},
		{"unknown type", CreatePaymentRequest{CustomerID: 1, Amount: 10, Method: "cash", Type: "transfer"}},
		{"bad date", CreatePaymentRequest{CustomerID: 1, Amount: 10, Method: "cash", Type: "payment", Date: "10/03/2025"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.req, 7)
			require.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}
