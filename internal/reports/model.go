// Package reports computes read-side aggregates over a point-in-time
// snapshot of the operational data. All computation happens in-process;
// nothing here writes.
package reports

import (
	"github.com/atlas-erp/atlas/internal/customers"
	"github.com/atlas-erp/atlas/internal/invoices"
	"github.com/atlas-erp/atlas/internal/payments"
	"github.com/atlas-erp/atlas/internal/products"
)

// Snapshot is the dataset every report computes over. It is loaded once
// per request (or served from cache) so all figures in one response
// describe the same moment.
type Snapshot struct {
	Customers []customers.Customer
	Products  []products.Product
	Invoices  []invoices.Invoice
	Payments  []payments.Payment
}

// Filter narrows report rows. Start and End are ISO YYYY-MM-DD strings
// compared lexicographically, inclusive on both ends. The remaining
// fields are equality filters; nil means no constraint.
type Filter struct {
	Start         string
	End           string
	CustomerID    *int64
	ProductID     *int64
	Category      *string
	PaymentMethod *string
	Status        *string
}

// InRange reports whether date falls inside the filter's date range.
func (f Filter) InRange(date string) bool {
	if f.Start != "" && date < f.Start {
		return false
	}
	if f.End != "" && date > f.End {
		return false
	}
	return true
}

// Summary is the cross-domain headline report.
type Summary struct {
	Invoices  InvoiceSummary  `json:"invoices"`
	Payments  PaymentSummary  `json:"payments"`
	Customers CustomerSummary `json:"customers"`
	Products  ProductSummary  `json:"products"`
}

type InvoiceSummary struct {
	Count    int            `json:"count"`
	Revenue  float64        `json:"revenue"`
	ByStatus map[string]int `json:"by_status"`
}

type PaymentSummary struct {
	Count    int     `json:"count"`
	Received float64 `json:"received"`
	Refunded float64 `json:"refunded"`
}

type CustomerSummary struct {
	Count       int     `json:"count"`
	Outstanding float64 `json:"outstanding"`
}

type ProductSummary struct {
	Count    int `json:"count"`
	LowStock int `json:"low_stock"`
}

// Dashboard is the landing-page aggregate.
type Dashboard struct {
	TodayRevenue float64      `json:"today_revenue"`
	MonthRevenue float64      `json:"month_revenue"`
	TopProducts  []TopProduct `json:"top_products"`
	Daily        []DailyPoint `json:"daily"`
}

// TopProduct ranks a product by summed line-item revenue. Ties keep
// first-seen order.
type TopProduct struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Revenue   float64 `json:"revenue"`
}

// DailyPoint is one day of the trailing invoice series.
type DailyPoint struct {
	Date  string  `json:"date"`
	Count int     `json:"count"`
	Total float64 `json:"total"`
}
