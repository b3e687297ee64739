package customers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is the read model. OrderCount and OrderDetail are derived on read.
type Customer struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	PhoneNumber *string       `json:"phone_number"`
	CreatedBy   int64         `json:"created_by"`
	OrderCount  int           `json:"order_count"`
	OrderDetail []OrderDetail `json:"order_detail"`
}

// OrderDetail is one of the customer's orders with its items.
type OrderDetail struct {
	OrderID   uuid.UUID    `json:"order_id"`
	CreatedAt time.Time    `json:"created_at"`
	Status    string       `json:"status"`
	Items     []DetailItem `json:"items"`
}

// DetailItem is one line item inside a customer's order detail.
type DetailItem struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"product"`
	ProductName  string          `json:"product_name"`
	ProductPrice decimal.Decimal `json:"product_price"`
	Quantity     int             `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// NewCustomer is the create/replace payload.
type NewCustomer struct {
	Name        string  `json:"name" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	PhoneNumber *string `json:"phone_number"`
}

// UpdateCustomer is the partial-update payload; nil fields are left untouched.
type UpdateCustomer struct {
	Name        *string `json:"name"`
	Email       *string `json:"email" validate:"omitempty,email"`
	PhoneNumber *string `json:"phone_number"`
}
