// internal/domain/order/memory_store.go
package order

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps orders in process memory. The Fail* methods inject
// errors so callers can exercise partial-write paths.
type MemoryStore struct {
	mu     sync.RWMutex
	orders map[string]*Order
	now    func() time.Time

	insertOrderErr error
	insertLinesErr error
	atomicErr      error
	listErr        error
}

// NewMemoryStore creates an empty in-memory order store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders: make(map[string]*Order),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// FailInsertOrder makes InsertOrder return err. Pass nil to recover.
func (s *MemoryStore) FailInsertOrder(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertOrderErr = err
}

// FailInsertOrderLines makes InsertOrderLines return err. Pass nil to recover.
func (s *MemoryStore) FailInsertOrderLines(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertLinesErr = err
}

// FailInsertOrderWithLines makes InsertOrderWithLines return err. Pass nil to recover.
func (s *MemoryStore) FailInsertOrderWithLines(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.atomicErr = err
}

// FailList makes ListOrdersForOwner return err. Pass nil to recover.
func (s *MemoryStore) FailList(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = err
}

func (s *MemoryStore) InsertOrder(_ context.Context, header Header) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.insertOrderErr != nil {
		return "", s.insertOrderErr
	}
	return s.insertLocked(header), nil
}

func (s *MemoryStore) InsertOrderLines(_ context.Context, lines []Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.insertLinesErr != nil {
		return s.insertLinesErr
	}
	if len(lines) == 0 {
		return ErrNoLines
	}
	for _, l := range lines {
		if _, ok := s.orders[l.OrderID]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownOrder, l.OrderID)
		}
	}
	for _, l := range lines {
		o := s.orders[l.OrderID]
		o.Lines = append(o.Lines, l)
	}
	return nil
}

func (s *MemoryStore) InsertOrderWithLines(_ context.Context, header Header, lines []Line) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.atomicErr != nil {
		return "", s.atomicErr
	}
	if len(lines) == 0 {
		return "", ErrNoLines
	}

	id := s.insertLocked(header)
	o := s.orders[id]
	for _, l := range lines {
		l.OrderID = id
		o.Lines = append(o.Lines, l)
	}
	return id, nil
}

func (s *MemoryStore) ListOrdersForOwner(_ context.Context, ownerID string) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listErr != nil {
		return nil, s.listErr
	}

	out := make([]Order, 0)
	for _, o := range s.orders {
		if o.OwnerID == ownerID {
			out = append(out, copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) GetOrder(_ context.Context, id string) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return Order{}, ErrUnknownOrder
	}
	return copyOrder(o), nil
}

func (s *MemoryStore) FindOrphanedHeaders(_ context.Context, createdBefore time.Time) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Order, 0)
	for _, o := range s.orders {
		if o.IsOrphaned() && o.CreatedAt.Before(createdBefore) {
			out = append(out, copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Orders returns every stored order, oldest first
func (s *MemoryStore) Orders() []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *MemoryStore) insertLocked(header Header) string {
	status := header.Status
	if status == "" {
		status = StatusPending
	}

	id := uuid.NewString()
	s.orders[id] = &Order{
		ID:          id,
		OwnerID:     header.OwnerID,
		TotalAmount: header.TotalAmount,
		Status:      status,
		PaymentRef:  header.PaymentRef,
		CreatedAt:   s.now(),
	}
	return id
}

func copyOrder(o *Order) Order {
	out := *o
	out.Lines = make([]Line, len(o.Lines))
	copy(out.Lines, o.Lines)
	return out
}
