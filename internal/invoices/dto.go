package invoices

type LineItemRequest struct {
	ProductID int64    `json:"product_id" validate:"required"`
	Quantity  float64  `json:"quantity" validate:"gt=0"`
	UnitPrice *float64 `json:"unit_price,omitempty" validate:"omitempty,gte=0"`
}

type DepositRequest struct {
	Amount float64 `json:"amount" validate:"gt=0"`
	Method string  `json:"method" validate:"required,max=50"`
	Paid   bool    `json:"paid"`
}

type CreateInvoiceRequest struct {
	CustomerID int64             `json:"customer_id" validate:"required"`
	Type       string            `json:"type" validate:"required"`
	Items      []LineItemRequest `json:"items" validate:"required,min=1,dive"`
	Deposit    *DepositRequest   `json:"deposit,omitempty"`
	Notes      *string           `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Date       string            `json:"date,omitempty"`
}

// UpdateInvoiceRequest edits an invoice. Items are accepted but, unless
// repost-on-edit is enabled, an edit that changes the total is rejected.
type UpdateInvoiceRequest struct {
	Items   []LineItemRequest `json:"items,omitempty" validate:"omitempty,min=1,dive"`
	Deposit *DepositRequest   `json:"deposit,omitempty"`
	Notes   *string           `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Date    *string           `json:"date,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type ListInvoicesRequest struct {
	CustomerID *int64  `json:"customer_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	Type       *string `json:"type,omitempty"`
	DateFrom   *string `json:"date_from,omitempty"`
	DateTo     *string `json:"date_to,omitempty"`
	Limit      int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset     int     `json:"offset" validate:"gte=0"`
}
