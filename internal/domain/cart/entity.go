// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Line is one product in the cart. Display fields are captured when the
// product is first added and are not refreshed on later adds.
type Line struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	ImageRef  string          `json:"image_ref"`
	Quantity  int             `json:"quantity"`
	AddedAt   time.Time       `json:"added_at"`
}

// Subtotal returns unit price times quantity
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Snapshot is the persisted form of a session cart
type Snapshot struct {
	SessionID string    `json:"session_id"`
	Lines     []Line    `json:"lines"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Totals represents calculated cart totals
type Totals struct {
	ItemCount     int             `json:"item_count"`     // Number of distinct lines
	TotalQuantity int             `json:"total_quantity"` // Sum of all quantities
	TotalPrice    decimal.Decimal `json:"total_price"`
}

func calculateTotals(lines []Line) Totals {
	totals := Totals{
		ItemCount:  len(lines),
		TotalPrice: decimal.Zero,
	}
	for _, l := range lines {
		totals.TotalQuantity += l.Quantity
		totals.TotalPrice = totals.TotalPrice.Add(l.Subtotal())
	}
	return totals
}
