// internal/domain/order/store.go
package order

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNoLines      = errors.New("order has no lines")
	ErrUnknownOrder = errors.New("unknown order")
)

// Store persists orders. InsertOrder and InsertOrderLines are separate
// writes; a failure between them leaves a header without lines.
type Store interface {
	InsertOrder(ctx context.Context, header Header) (string, error)
	InsertOrderLines(ctx context.Context, lines []Line) error
	// ListOrdersForOwner returns orders newest first, lines included.
	ListOrdersForOwner(ctx context.Context, ownerID string) ([]Order, error)
	// GetOrder returns ErrUnknownOrder when no header has the id.
	GetOrder(ctx context.Context, id string) (Order, error)
}

// AtomicStore writes a header and its lines in one transaction.
type AtomicStore interface {
	InsertOrderWithLines(ctx context.Context, header Header, lines []Line) (string, error)
}

// OrphanFinder lists headers created before the cutoff that have no lines.
type OrphanFinder interface {
	FindOrphanedHeaders(ctx context.Context, createdBefore time.Time) ([]Order, error)
}
