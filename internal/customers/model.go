package customers

import "time"

// Category segments customers for pricing and reporting.
type Category string

const (
	CategoryInstitutions Category = "Institutions"
	CategoryShops        Category = "Shops"
	CategoryIndividuals  Category = "Individuals"
)

// ValidCategory reports whether c is a known customer category.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryInstitutions, CategoryShops, CategoryIndividuals:
		return true
	}
	return false
}

// Customer is a trading partner. Balance is a denormalized cache of the
// latest ledger transaction's balance snapshot: positive means the
// customer owes money, negative means they hold credit. Only the ledger
// recorder mutates it.
type Customer struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Category     Category  `json:"category"`
	Email        *string   `json:"email,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	Address      *string   `json:"address,omitempty"`
	DiscountRate float64   `json:"discount_rate"`
	Balance      float64   `json:"balance"`
	CreatedBy    int64     `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
