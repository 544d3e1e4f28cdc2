package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atlas-erp/atlas/internal/customers"
	"github.com/atlas-erp/atlas/internal/invoices"
	"github.com/atlas-erp/atlas/internal/payments"
	"github.com/atlas-erp/atlas/internal/products"
)

type staticLoader struct {
	snap  *Snapshot
	loads int
}

func (l *staticLoader) Load(context.Context) (*Snapshot, error) {
	l.loads++
	return l.snap, nil
}

func testSnapshot() *Snapshot {
	return &Snapshot{
		Customers: []customers.Customer{
			{ID: 1, Name: "Harbor Works", Category: customers.CategoryShops, Balance: 285},
			{ID: 2, Name: "City Clinic", Category: customers.CategoryInstitutions, Balance: -35},
		},
		Products: []products.Product{
			{ID: 10, Name: "Steel Bracket", Category: "hardware", Price: 150, Stock: 3, LowStockThreshold: 5},
			{ID: 11, Name: "Hinge Set", Category: "hardware", Price: 40, Stock: 80, LowStockThreshold: 10},
		},
		Invoices: []invoices.Invoice{
			{ID: 1, OrderNumber: "SO-A", CustomerID: 1, Type: invoices.TypeSale, Status: invoices.StatusPending, Date: "2025-03-01", Total: 285,
				Items: []invoices.LineItem{{ProductID: 10, Name: "Steel Bracket", Quantity: 2, UnitPrice: 150, Total: 300}}},
			{ID: 2, OrderNumber: "SO-B", CustomerID: 2, Type: invoices.TypeSale, Status: invoices.StatusPaid, Date: "2025-03-02", Total: 40,
				Items: []invoices.LineItem{{ProductID: 11, Name: "Hinge Set", Quantity: 1, UnitPrice: 40, Total: 40}}},
			{ID: 3, OrderNumber: "SO-C", CustomerID: 1, Type: invoices.TypeReturn, Status: invoices.StatusPending, Date: "2025-03-03", Total: 40,
				Items: []invoices.LineItem{{ProductID: 11, Name: "Hinge Set", Quantity: 1, UnitPrice: 40, Total: 40}}},
		},
		Payments: []payments.Payment{
			{ID: 1, CustomerID: 1, Amount: 100, Method: "cash", Type: payments.TypePayment, Date: "2025-03-02"},
			{ID: 2, CustomerID: 2, Amount: 35, Method: "bank", Type: payments.TypeRefund, Date: "2025-03-04"},
		},
	}
}

func TestSummaryOverFullSnapshot(t *testing.T) {
	svc := NewService(&staticLoader{snap: testSnapshot()}, nil)

	summary, err := svc.Summary(context.Background(), Filter{})
	require.NoError(t, err)
	require.Equal(t, 3, summary.Invoices.Count)
	// 285 + 40 sales minus the 40 return.
	require.Equal(t, 285.0, summary.Invoices.Revenue)
	require.Equal(t, map[string]int{"pending": 2, "paid": 1}, summary.Invoices.ByStatus)
	require.Equal(t, 2, summary.Payments.Count)
	require.Equal(t, 100.0, summary.Payments.Received)
	require.Equal(t, 35.0, summary.Payments.Refunded)
	require.Equal(t, 250.0, summary.Customers.Outstanding)
	require.Equal(t, 2, summary.Products.Count)
	require.Equal(t, 1, summary.Products.LowStock)
}

func TestSummaryDateRangeIsInclusive(t *testing.T) {
	svc := NewService(&staticLoader{snap: testSnapshot()}, nil)

	summary, err := svc.Summary(context.Background(), Filter{Start: "2025-03-02", End: "2025-03-03"})
	require.NoError(t, err)
	// Both boundary days count: SO-B on the 2nd and the return on the 3rd.
	require.Equal(t, 2, summary.Invoices.Count)
	require.Equal(t, 0.0, summary.Invoices.Revenue)
	require.Equal(t, 1, summary.Payments.Count)
}

func TestSalesEqualityFilters(t *testing.T) {
	svc := NewService(&staticLoader{snap: testSnapshot()}, nil)

	one := int64(1)
	rows, err := svc.Sales(context.Background(), Filter{CustomerID: &one})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	status := "paid"
	rows, err = svc.Sales(context.Background(), Filter{Status: &status})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "SO-B", rows[0].OrderNumber)

	product := int64(11)
	rows, err = svc.Sales(context.Background(), Filter{ProductID: &product})
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestPaymentsMethodFilter(t *testing.T) {
	svc := NewService(&staticLoader{snap: testSnapshot()}, nil)

	method := "bank"
	rows, err := svc.Payments(context.Background(), Filter{PaymentMethod: &method})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, payments.TypeRefund, rows[0].Type)
}

func TestInventoryFlagsLowStock(t *testing.T) {
	svc := NewService(&staticLoader{snap: testSnapshot()}, nil)

	rows, err := svc.Inventory(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.True(t, rows[0].LowStock)
	require.False(t, rows[1].LowStock)
}

func TestFilterRejectsBadDate(t *testing.T) {
	svc := NewService(&staticLoader{snap: testSnapshot()}, nil)

	_, err := svc.Summary(context.Background(), Filter{Start: "03/01/2025"})
	require.Error(t, err)
}

func TestDashboardRevenueAndSeries(t *testing.T) {
	snap := testSnapshot()
	loader := &staticLoader{snap: snap}
	svc := NewService(loader, nil)
	svc.now = func() time.Time {
		return time.Date(2025, 3, 3, 15, 0, 0, 0, time.UTC)
	}

	dashboard, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	// Only the return falls on the 3rd.
	require.Equal(t, -40.0, dashboard.TodayRevenue)
	require.Equal(t, 285.0, dashboard.MonthRevenue)

	require.Len(t, dashboard.Daily, 7)
	require.Equal(t, "2025-02-25", dashboard.Daily[0].Date)
	require.Equal(t, "2025-03-03", dashboard.Daily[6].Date)
	require.Equal(t, 1, dashboard.Daily[4].Count)
	require.Equal(t, 285.0, dashboard.Daily[4].Total)
	require.Equal(t, -40.0, dashboard.Daily[6].Total)
	require.Equal(t, 0, dashboard.Daily[0].Count)
}

func TestTopProductsRanksByRevenue(t *testing.T) {
	top := topProducts(testSnapshot().Invoices, 5)
	require.Len(t, top, 2)
	require.Equal(t, int64(10), top[0].ProductID)
	require.Equal(t, 300.0, top[0].Revenue)
	// Hinge Set sold once and returned once.
	require.Equal(t, 0.0, top[1].Revenue)
}

func TestTopProductsTiesKeepFirstSeenOrder(t *testing.T) {
	invs := []invoices.Invoice{
		{Type: invoices.TypeSale, Items: []invoices.LineItem{
			{ProductID: 1, Name: "Alpha", Total: 50},
			{ProductID: 2, Name: "Beta", Total: 50},
		}},
		{Type: invoices.TypeSale, Items: []invoices.LineItem{
			{ProductID: 3, Name: "Gamma", Total: 50},
		}},
	}
	top := topProducts(invs, 5)
	require.Equal(t, []int64{1, 2, 3}, []int64{top[0].ProductID, top[1].ProductID, top[2].ProductID})
}

func TestTopProductsLimit(t *testing.T) {
	var invs []invoices.Invoice
	for i := int64(1); i <= 8; i++ {
		invs = append(invs, invoices.Invoice{Type: invoices.TypeSale, Items: []invoices.LineItem{
			{ProductID: i, Name: "P", Total: float64(i)},
		}})
	}
	top := topProducts(invs, 5)
	require.Len(t, top, 5)
	require.Equal(t, int64(8), top[0].ProductID)
}
