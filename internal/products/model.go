package products

import "time"

// Product is a stock item. Stock is operator-maintained: invoice creation
// does not decrement it. LowStockThreshold drives the monitoring job.
type Product struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Category          string    `json:"category"`
	Price             float64   `json:"price"`
	Stock             int       `json:"stock"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	CreatedBy         int64     `json:"created_by"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// IsLowStock reports whether the product is at or below its threshold.
func (p Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}

type CreateProductRequest struct {
	Name              string  `json:"name" validate:"required,max=200"`
	Category          string  `json:"category" validate:"required,max=100"`
	Price             float64 `json:"price" validate:"gte=0"`
	Stock             int     `json:"stock" validate:"gte=0"`
	LowStockThreshold int     `json:"low_stock_threshold" validate:"gte=0"`
}

type UpdateProductRequest struct {
	Name              *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Category          *string  `json:"category,omitempty" validate:"omitempty,max=100"`
	Price             *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Stock             *int     `json:"stock,omitempty" validate:"omitempty,gte=0"`
	LowStockThreshold *int     `json:"low_stock_threshold,omitempty" validate:"omitempty,gte=0"`
}

type ListProductsRequest struct {
	Category *string `json:"category,omitempty"`
	Search   *string `json:"search,omitempty"`
	LowStock bool    `json:"low_stock,omitempty"`
	Limit    int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int     `json:"offset" validate:"gte=0"`
}
