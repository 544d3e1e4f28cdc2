package reports

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/atlas-erp/atlas/internal/customers"
	"github.com/atlas-erp/atlas/internal/invoices"
	"github.com/atlas-erp/atlas/internal/payments"
	"github.com/atlas-erp/atlas/internal/products"
	"github.com/atlas-erp/atlas/internal/shared"
)

// Service computes reports over a loaded snapshot. The cache may be nil,
// in which case every call loads fresh.
type Service struct {
	loader Loader
	cache  *Cache
	now    func() time.Time
}

// NewService builds a Service.
func NewService(loader Loader, cache *Cache) *Service {
	return &Service{loader: loader, cache: cache, now: time.Now}
}

func validateRange(f Filter) error {
	for _, bound := range []string{f.Start, f.End} {
		if bound == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", bound); err != nil {
			return fmt.Errorf("%w: date filter must be YYYY-MM-DD", shared.ErrValidation)
		}
	}
	return nil
}

// Summary aggregates counts and monetary sums across all domains,
// restricted to the filter's date range where rows carry a date.
func (s *Service) Summary(ctx context.Context, filter Filter) (*Summary, error) {
	if err := validateRange(filter); err != nil {
		return nil, err
	}
	key, err := s.cache.BuildKey(ctx, "summary", filter.Start, filter.End)
	if err != nil {
		return nil, err
	}
	var out Summary
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		snap, err := s.loader.Load(ctx)
		if err != nil {
			return nil, err
		}
		return buildSummary(snap, filter), nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func buildSummary(snap *Snapshot, filter Filter) *Summary {
	out := &Summary{}
	out.Invoices.ByStatus = map[string]int{}

	for _, inv := range snap.Invoices {
		if !filter.InRange(inv.Date) {
			continue
		}
		out.Invoices.Count++
		out.Invoices.ByStatus[string(inv.Status)]++
		if inv.Type == invoices.TypeReturn {
			out.Invoices.Revenue = round2(out.Invoices.Revenue - inv.Total)
		} else {
			out.Invoices.Revenue = round2(out.Invoices.Revenue + inv.Total)
		}
	}
	for _, p := range snap.Payments {
		if !filter.InRange(p.Date) {
			continue
		}
		out.Payments.Count++
		if p.Type == payments.TypeRefund {
			out.Payments.Refunded = round2(out.Payments.Refunded + p.Amount)
		} else {
			out.Payments.Received = round2(out.Payments.Received + p.Amount)
		}
	}
	for _, c := range snap.Customers {
		out.Customers.Count++
		out.Customers.Outstanding = round2(out.Customers.Outstanding + c.Balance)
	}
	for _, p := range snap.Products {
		out.Products.Count++
		if p.IsLowStock() {
			out.Products.LowStock++
		}
	}
	return out
}

// Sales returns invoice rows matching the filter, verbatim for display
// or export.
func (s *Service) Sales(ctx context.Context, filter Filter) ([]invoices.Invoice, error) {
	if err := validateRange(filter); err != nil {
		return nil, err
	}
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return filterInvoices(snap, filter), nil
}

func filterInvoices(snap *Snapshot, filter Filter) []invoices.Invoice {
	var out []invoices.Invoice
	for _, inv := range snap.Invoices {
		if !filter.InRange(inv.Date) {
			continue
		}
		if filter.CustomerID != nil && inv.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.Status != nil && string(inv.Status) != *filter.Status {
			continue
		}
		if filter.ProductID != nil && !invoiceHasProduct(inv, *filter.ProductID) {
			continue
		}
		out = append(out, inv)
	}
	return out
}

func invoiceHasProduct(inv invoices.Invoice, productID int64) bool {
	for _, item := range inv.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// Customers returns customer rows matching the equality filters.
func (s *Service) Customers(ctx context.Context, filter Filter) ([]customers.Customer, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	var out []customers.Customer
	for _, c := range snap.Customers {
		if filter.Category != nil && string(c.Category) != *filter.Category {
			continue
		}
		if filter.CustomerID != nil && c.ID != *filter.CustomerID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Inventory returns product rows matching the equality filters.
func (s *Service) Inventory(ctx context.Context, filter Filter) ([]ProductRow, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	var out []ProductRow
	for _, p := range snap.Products {
		if filter.Category != nil && p.Category != *filter.Category {
			continue
		}
		if filter.ProductID != nil && p.ID != *filter.ProductID {
			continue
		}
		out = append(out, ProductRow{Product: p, LowStock: p.IsLowStock()})
	}
	return out, nil
}

// Payments returns payment rows matching the filter.
func (s *Service) Payments(ctx context.Context, filter Filter) ([]payments.Payment, error) {
	if err := validateRange(filter); err != nil {
		return nil, err
	}
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	var out []payments.Payment
	for _, p := range snap.Payments {
		if !filter.InRange(p.Date) {
			continue
		}
		if filter.CustomerID != nil && p.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.PaymentMethod != nil && p.Method != *filter.PaymentMethod {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Dashboard computes the landing-page aggregate for the current day.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := s.now()
	key, err := s.cache.BuildKey(ctx, "dashboard", now.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	var out Dashboard
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		snap, err := s.loader.Load(ctx)
		if err != nil {
			return nil, err
		}
		return buildDashboard(snap, now), nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func buildDashboard(snap *Snapshot, now time.Time) *Dashboard {
	today := now.Format("2006-01-02")
	monthPrefix := now.Format("2006-01")
	out := &Dashboard{}

	for _, inv := range snap.Invoices {
		signed := inv.Total
		if inv.Type == invoices.TypeReturn {
			signed = -inv.Total
		}
		if inv.Date == today {
			out.TodayRevenue = round2(out.TodayRevenue + signed)
		}
		if len(inv.Date) >= len(monthPrefix) && inv.Date[:len(monthPrefix)] == monthPrefix {
			out.MonthRevenue = round2(out.MonthRevenue + signed)
		}
	}

	out.TopProducts = topProducts(snap.Invoices, 5)
	out.Daily = dailySeries(snap.Invoices, now, 7)
	return out
}

// topProducts ranks products by summed line-item revenue; return
// invoices subtract from a product's revenue. The sort is stable so
// equal revenues keep the order in which the products were first seen.
func topProducts(invs []invoices.Invoice, limit int) []TopProduct {
	index := map[int64]int{}
	var ranked []TopProduct
	for _, inv := range invs {
		sign := 1.0
		if inv.Type == invoices.TypeReturn {
			sign = -1.0
		}
		for _, item := range inv.Items {
			pos, seen := index[item.ProductID]
			if !seen {
				index[item.ProductID] = len(ranked)
				ranked = append(ranked, TopProduct{ProductID: item.ProductID, Name: item.Name})
				pos = len(ranked) - 1
			}
			ranked[pos].Revenue = round2(ranked[pos].Revenue + sign*item.Total)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Revenue > ranked[j].Revenue
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// dailySeries returns the trailing calendar days of invoice counts
// and totals, oldest first, including days with no activity.
func dailySeries(invs []invoices.Invoice, now time.Time, days int) []DailyPoint {
	byDate := map[string]*DailyPoint{}
	out := make([]DailyPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		out = append(out, DailyPoint{Date: date})
		byDate[date] = &out[len(out)-1]
	}
	for _, inv := range invs {
		point, ok := byDate[inv.Date]
		if !ok {
			continue
		}
		point.Count++
		signed := inv.Total
		if inv.Type == invoices.TypeReturn {
			signed = -inv.Total
		}
		point.Total = round2(point.Total + signed)
	}
	return out
}

// ProductRow annotates a product with its low-stock state for display.
type ProductRow struct {
	products.Product
	LowStock bool `json:"low_stock"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
