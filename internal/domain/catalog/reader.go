// internal/domain/catalog/reader.go
package catalog

import "context"

// Reader is the read side of the product catalog.
type Reader interface {
	ListProducts(ctx context.Context, filter Filter) ([]Product, error)
	// GetProduct returns ErrProductNotFound when id is unknown.
	GetProduct(ctx context.Context, id string) (Product, error)
}
