package invoices

import (
	"math"
	"time"
)

// Status tracks the settlement state of an invoice.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusPartial   Status = "partial"
	StatusCancelled Status = "cancelled"
)

// ValidStatus reports whether s is a known invoice status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusPaid, StatusPartial, StatusCancelled:
		return true
	}
	return false
}

// Type distinguishes sales from returns. A sale debits the customer's
// ledger by the invoice total; a return credits it.
type Type string

const (
	TypeSale   Type = "sale"
	TypeReturn Type = "return"
)

// ValidType reports whether t is a known invoice type.
func ValidType(t Type) bool {
	return t == TypeSale || t == TypeReturn
}

// LineItem is one invoice line. Name and unit price are frozen copies
// taken at creation time so later product edits do not rewrite history.
type LineItem struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
}

// Deposit is an optional up-front amount noted on the invoice. It is
// informational and has no ledger effect of its own.
type Deposit struct {
	Amount float64 `json:"amount"`
	Method string  `json:"method"`
	Paid   bool    `json:"paid"`
}

// Invoice is a sale or return document. DiscountRate is the customer's
// rate frozen at creation; totals are computed server-side and, by
// default, locked once the ledger entry is posted.
type Invoice struct {
	ID             int64      `json:"id"`
	OrderNumber    string     `json:"order_number"`
	CustomerID     int64      `json:"customer_id"`
	Type           Type       `json:"type"`
	Items          []LineItem `json:"items"`
	Subtotal       float64    `json:"subtotal"`
	DiscountRate   float64    `json:"discount_rate"`
	DiscountAmount float64    `json:"discount_amount"`
	Total          float64    `json:"total"`
	Status         Status     `json:"status"`
	Deposit        *Deposit   `json:"deposit,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	Date           string     `json:"date"`
	CreatedBy      int64      `json:"created_by"`
	UpdatedBy      int64      `json:"updated_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CanTransitionTo reports whether the invoice may move to target. Only
// pending invoices may change settlement state.
func (i *Invoice) CanTransitionTo(target Status) bool {
	if i.Status != StatusPending {
		return false
	}
	switch target {
	case StatusPaid, StatusPartial, StatusCancelled:
		return true
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
