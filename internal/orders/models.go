package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses. Transitions are unconstrained: any status may be set at any time.
const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

func validStatus(s string) bool {
	return s == StatusPending || s == StatusCompleted || s == StatusCancelled
}

// Order is the read model. TotalPrice and TotalQuantity are recomputed from the
// items on every read and never stored.
type Order struct {
	OrderID       uuid.UUID       `json:"order_id"`
	Customer      *Customer       `json:"customer"`
	CreatedBy     *int64          `json:"created_by"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	Items         []Item          `json:"items"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	TotalQuantity int             `json:"total_quantity"`
}

// Customer is the customer reference embedded in an order read.
type Customer struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	PhoneNumber *string `json:"phone_number"`
}

// Item is one line item with its product detail and derived subtotal.
type Item struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"product"`
	ProductName  string          `json:"product_name"`
	ProductPrice decimal.Decimal `json:"product_price"`
	Quantity     int             `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// ItemEntry is one line-item entry in a write payload. ID is only meaningful on
// partial updates, where it selects the existing item to overwrite.
type ItemEntry struct {
	ID        *int64 `json:"id"`
	ProductID int64  `json:"product"`
	Quantity  int    `json:"quantity"`
}

// NewOrder is the create/replace payload. order_id, created_by and created_at are
// server-assigned; client-supplied values are ignored by the handlers.
type NewOrder struct {
	CustomerID *int64      `json:"customer"`
	Status     string      `json:"status"`
	Items      []ItemEntry `json:"items"`
}

// PatchOrder is the merge payload; nil fields are left untouched. A nil Items
// slice leaves the item set alone entirely.
type PatchOrder struct {
	CustomerID *int64      `json:"customer"`
	Status     *string     `json:"status"`
	Items      []ItemEntry `json:"items"`
}

// ProductSales is one row of the top-selling report.
type ProductSales struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	TotalSold int64           `json:"total_sold"`
}

// MonthRevenue is one month's revenue, labeled like "Jan 2025".
type MonthRevenue struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// MonthRevenueTotal is the filtered-revenue response body.
type MonthRevenueTotal struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

// totals sums the items' subtotals and quantities with decimal arithmetic.
func totals(items []Item) (decimal.Decimal, int) {
	price := decimal.Zero
	quantity := 0
	for _, it := range items {
		price = price.Add(it.Subtotal)
		quantity += it.Quantity
	}
	return price, quantity
}
