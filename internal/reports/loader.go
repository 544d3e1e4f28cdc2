package reports

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/atlas-erp/atlas/internal/customers"
	"github.com/atlas-erp/atlas/internal/invoices"
	"github.com/atlas-erp/atlas/internal/payments"
	"github.com/atlas-erp/atlas/internal/products"
)

// Loader produces the snapshot reports compute over.
type Loader interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// RepoLoader loads the four domains concurrently from their
// repositories.
type RepoLoader struct {
	Customers customers.Repository
	Products  products.Repository
	Invoices  invoices.Repository
	Payments  payments.Repository
}

// Load fetches all domains in parallel and fails fast on the first
// error.
func (l *RepoLoader) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, _, err := l.Customers.List(ctx, customers.ListCustomersRequest{})
		snap.Customers = rows
		return err
	})
	g.Go(func() error {
		rows, _, err := l.Products.List(ctx, products.ListProductsRequest{})
		snap.Products = rows
		return err
	})
	g.Go(func() error {
		rows, _, err := l.Invoices.List(ctx, invoices.ListInvoicesRequest{})
		snap.Invoices = rows
		return err
	})
	g.Go(func() error {
		rows, _, err := l.Payments.List(ctx, payments.ListPaymentsRequest{})
		snap.Payments = rows
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}
