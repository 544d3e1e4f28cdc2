package payments

import "time"

// Type distinguishes money received from money returned. A payment
// credits the customer's ledger; a refund debits it.
type Type string

const (
	TypePayment Type = "payment"
	TypeRefund  Type = "refund"
)

// ValidType reports whether t is a known payment type.
func ValidType(t Type) bool {
	return t == TypePayment || t == TypeRefund
}

// Payment is a settlement record. OrderNumber optionally links it to an
// invoice; the link is informational and does not change how the amount
// is posted.
type Payment struct {
	ID          int64     `json:"id"`
	CustomerID  int64     `json:"customer_id"`
	OrderNumber *string   `json:"order_number,omitempty"`
	Amount      float64   `json:"amount"`
	Method      string    `json:"method"`
	Type        Type      `json:"type"`
	Notes       *string   `json:"notes,omitempty"`
	Date        string    `json:"date"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreatePaymentRequest struct {
	CustomerID  int64   `json:"customer_id" validate:"required"`
	OrderNumber *string `json:"order_number,omitempty" validate:"omitempty,max=50"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	Method      string  `json:"method" validate:"required,max=50"`
	Type        string  `json:"type" validate:"required"`
	Notes       *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Date        string  `json:"date,omitempty"`
}

type ListPaymentsRequest struct {
	CustomerID *int64  `json:"customer_id,omitempty"`
	Type       *string `json:"type,omitempty"`
	Method     *string `json:"method,omitempty"`
	DateFrom   *string `json:"date_from,omitempty"`
	DateTo     *string `json:"date_to,omitempty"`
	Limit      int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset     int     `json:"offset" validate:"gte=0"`
}
