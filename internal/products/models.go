package products

import "github.com/shopspring/decimal"

// Product is a catalog entry. InStock is derived from Stock, never stored.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Active      bool            `json:"active"`
	InStock     bool            `json:"in_stock"`
}

// NewProduct is the create/replace payload.
type NewProduct struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"min=0"`
	Active      bool            `json:"active"`
}

// UpdateProduct is the partial-update payload; nil fields are left untouched.
type UpdateProduct struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock" validate:"omitempty,min=0"`
	Active      *bool            `json:"active"`
}

// Info is the catalog summary returned by the info endpoint.
type Info struct {
	Products []Product       `json:"products"`
	Count    int             `json:"count"`
	MaxPrice decimal.Decimal `json:"max_price"`
}
