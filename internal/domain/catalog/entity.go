// internal/domain/catalog/entity.go
package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product")
)

// Product is a catalog item as read by the storefront.
type Product struct {
	ID          string          `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string          `gorm:"not null;size:255" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Image       string          `gorm:"size:500" json:"image"`
	Category    string          `gorm:"size:100;index" json:"category"`
	Rating      float64         `json:"rating"`
	Stock       int             `json:"stock"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TableName specifies the table name for Product
func (Product) TableName() string {
	return "products"
}

// Validate reports whether the product can be put in a cart.
func (p Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidProduct)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: negative price %s for %s", ErrInvalidProduct, p.Price, p.ID)
	}
	return nil
}

// Filter narrows ListProducts. Zero value lists everything.
type Filter struct {
	Category string `form:"category"`
	Search   string `form:"search"`
}
