// internal/domain/order/entity.go
package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status represents the order status
type Status string

const (
	StatusPending   Status = "pending"
	StatusShipped   Status = "shipped"
	StatusCompleted Status = "completed"
)

// Header is the order row written before its lines
type Header struct {
	OwnerID     string
	TotalAmount decimal.Decimal
	Status      Status
	PaymentRef  string
}

// Line is one purchased product. UnitPrice is the cart price at checkout.
type Line struct {
	OrderID     string          `json:"order_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Order is a stored order with its lines
type Order struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"owner_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      Status          `json:"status"`
	PaymentRef  string          `json:"payment_ref"`
	CreatedAt   time.Time       `json:"created_at"`
	Lines       []Line          `json:"lines"`
}

// IsOrphaned reports whether the header was written without any lines
func (o Order) IsOrphaned() bool {
	return len(o.Lines) == 0
}
