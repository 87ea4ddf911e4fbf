// internal/domain/cart/store.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Akshat090803/ecommerce-final-project/internal/domain/catalog"
)

// MaxLineQuantity is the largest quantity a single cart line may hold
const MaxLineQuantity = 999

// ErrQuantityLimit is returned when a change would push a line past MaxLineQuantity
var ErrQuantityLimit = errors.New("cart line quantity limit exceeded")

// Store is the cart of one session. Every mutation is written through to
// the Persister; if the write fails the in-memory change is undone.
type Store struct {
	mu        sync.Mutex
	sessionID string
	lines     []Line
	createdAt time.Time
	updatedAt time.Time
	persister Persister
	logger    logrus.FieldLogger
	now       func() time.Time
}

// Open loads the session cart from persister.
func Open(ctx context.Context, sessionID string, persister Persister, logger logrus.FieldLogger) (*Store, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID required for cart")
	}

	snapshot, err := persister.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	s := &Store{
		sessionID: sessionID,
		createdAt: snapshot.CreatedAt,
		updatedAt: snapshot.UpdatedAt,
		persister: persister,
		logger:    logger.WithField("session_id", sessionID),
		now:       func() time.Time { return time.Now().UTC() },
	}
	s.lines = s.normalize(snapshot.Lines)

	if s.createdAt.IsZero() {
		s.createdAt = s.now()
		s.updatedAt = s.createdAt
	}
	return s, nil
}

// normalize drops lines that break the one-line-per-product, quantity >= 1
// rule. Stored snapshots can be edited by anything with access to Redis.
func (s *Store) normalize(stored []Line) []Line {
	lines := make([]Line, 0, len(stored))
	index := make(map[string]int, len(stored))

	for _, l := range stored {
		if l.ProductID == "" || l.Quantity < 1 {
			s.logger.WithField("product_id", l.ProductID).Warn("Dropping invalid stored cart line")
			continue
		}
		if l.Quantity > MaxLineQuantity {
			s.logger.WithField("product_id", l.ProductID).Warn("Capping stored cart line quantity")
			l.Quantity = MaxLineQuantity
		}
		if i, ok := index[l.ProductID]; ok {
			lines[i].Quantity = min(lines[i].Quantity+l.Quantity, MaxLineQuantity)
			s.logger.WithField("product_id", l.ProductID).Warn("Merging duplicate stored cart line")
			continue
		}
		index[l.ProductID] = len(lines)
		lines = append(lines, l)
	}
	return lines
}

// SessionID returns the session the cart belongs to
func (s *Store) SessionID() string {
	return s.sessionID
}

// AddToCart adds quantity of product. An existing line only has its
// quantity increased. Panics if product is invalid or quantity < 1.
// Returns ErrQuantityLimit if the line would exceed MaxLineQuantity.
func (s *Store) AddToCart(ctx context.Context, product catalog.Product, quantity int) error {
	if err := product.Validate(); err != nil {
		panic(fmt.Sprintf("cart: AddToCart: %v", err))
	}
	if quantity < 1 {
		panic(fmt.Sprintf("cart: AddToCart: quantity must be at least 1, got %d", quantity))
	}

	return s.mutate(ctx, func(lines []Line) ([]Line, bool, error) {
		i := indexOf(lines, product.ID)
		current := 0
		if i >= 0 {
			current = lines[i].Quantity
		}
		// compared as a difference so huge quantities cannot overflow
		if quantity > MaxLineQuantity-current {
			return nil, false, ErrQuantityLimit
		}
		if i >= 0 {
			lines[i].Quantity += quantity
			return lines, true, nil
		}
		return append(lines, Line{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			ImageRef:  product.Image,
			Quantity:  quantity,
			AddedAt:   s.now(),
		}), true, nil
	})
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less
// removes it. Unknown products are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveFromCart(ctx, productID)
	}
	if quantity > MaxLineQuantity {
		return ErrQuantityLimit
	}

	return s.mutate(ctx, func(lines []Line) ([]Line, bool, error) {
		i := indexOf(lines, productID)
		if i < 0 || lines[i].Quantity == quantity {
			return lines, false, nil
		}
		lines[i].Quantity = quantity
		return lines, true, nil
	})
}

// RemoveFromCart removes a line if present
func (s *Store) RemoveFromCart(ctx context.Context, productID string) error {
	return s.mutate(ctx, func(lines []Line) ([]Line, bool, error) {
		i := indexOf(lines, productID)
		if i < 0 {
			return lines, false, nil
		}
		return append(lines[:i], lines[i+1:]...), true, nil
	})
}

// ClearCart empties the cart and deletes the stored snapshot.
func (s *Store) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persister.Delete(ctx, s.sessionID); err != nil {
		return err
	}

	s.lines = nil
	s.updatedAt = s.now()
	return nil
}

// Lines returns a copy of the lines in insertion order
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// IsEmpty reports whether the cart has no lines
func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines) == 0
}

// TotalItems returns the sum of all line quantities
func (s *Store) TotalItems() int {
	return s.Totals().TotalQuantity
}

// TotalPrice returns the sum of unit price times quantity over all lines
func (s *Store) TotalPrice() decimal.Decimal {
	return s.Totals().TotalPrice
}

// Totals recomputes the derived cart totals
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return calculateTotals(s.lines)
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID: s.sessionID,
		Lines:     cloneLines(s.lines),
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
}

// mutate applies fn to a copy of the lines and persists the result.
// Memory is only updated once the write succeeds.
func (s *Store) mutate(ctx context.Context, fn func(lines []Line) ([]Line, bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed, err := fn(cloneLines(s.lines))
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	prevLines, prevUpdated := s.lines, s.updatedAt
	s.lines = next
	s.updatedAt = s.now()

	if err := s.persister.Save(ctx, s.sessionID, s.snapshotLocked()); err != nil {
		s.lines, s.updatedAt = prevLines, prevUpdated
		s.logger.WithError(err).Error("Failed to persist cart, change reverted")
		return err
	}
	return nil
}

func indexOf(lines []Line, productID string) int {
	for i := range lines {
		if lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}
