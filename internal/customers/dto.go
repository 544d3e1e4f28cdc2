package customers

type CreateCustomerRequest struct {
	Name         string  `json:"name" validate:"required,max=200"`
	Category     string  `json:"category" validate:"required"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address      *string `json:"address,omitempty" validate:"omitempty,max=500"`
	DiscountRate float64 `json:"discount_rate" validate:"gte=0,lte=100"`
}

type UpdateCustomerRequest struct {
	Name         *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Category     *string  `json:"category,omitempty"`
	Email        *string  `json:"email,omitempty" validate:"omitempty,email"`
	Phone        *string  `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address      *string  `json:"address,omitempty" validate:"omitempty,max=500"`
	DiscountRate *float64 `json:"discount_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
}

type ListCustomersRequest struct {
	Category *string `json:"category,omitempty"`
	Search   *string `json:"search,omitempty"`
	Limit    int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int     `json:"offset" validate:"gte=0"`
}
