// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Akshat090803/ecommerce-final-project/internal/domain/cart"
	"github.com/Akshat090803/ecommerce-final-project/internal/domain/identity"
	"github.com/Akshat090803/ecommerce-final-project/internal/domain/order"
	"github.com/Akshat090803/ecommerce-final-project/internal/pkg/metrics"
)

// Notifier is told about committed orders. Failures never undo the order.
type Notifier interface {
	OrderPlaced(ctx context.Context, o order.Order) error
}

// Service places orders from session carts
type Service struct {
	orders     order.Store
	atomic     bool
	notifier   Notifier
	paymentRef PaymentRefGenerator
	metrics    *metrics.Metrics
	logger     logrus.FieldLogger
	now        func() time.Time
}

// NewService creates a checkout service. When atomicOrders is set and the
// store implements order.AtomicStore, header and lines are written in one
// transaction.
func NewService(orders order.Store, atomicOrders bool, m *metrics.Metrics, logger logrus.FieldLogger) *Service {
	return &Service{
		orders:     orders,
		atomic:     atomicOrders,
		paymentRef: FabricatePaymentRef,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

// SetNotifier registers the committed-order notifier
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// SetPaymentRefGenerator replaces FabricatePaymentRef
func (s *Service) SetPaymentRefGenerator(g PaymentRefGenerator) {
	s.paymentRef = g
}

// PlaceOrder converts the cart into an order for the current principal.
//
// The cart is only cleared once the order and all its lines are stored.
// Store writes are never retried. If the lines write fails after the
// header was stored, the header is left in place and reported through
// PlacementError.OrderID.
func (s *Service) PlaceOrder(ctx context.Context, provider identity.Provider, store *cart.Store) (*Result, error) {
	start := s.now()
	log := s.logger.WithField("session_id", store.SessionID())

	log.WithField("state", StateValidating).Debug("Checkout started")
	principal, ok := provider.CurrentPrincipal(ctx)
	if !ok {
		return nil, s.fail(log, start, metrics.OutcomeNotAuthenticated, &PlacementError{State: StateRejected, Err: ErrNotAuthenticated})
	}
	log = log.WithField("owner_id", principal.ID)

	lines := store.Lines()
	if len(lines) == 0 {
		return nil, s.fail(log, start, metrics.OutcomeEmptyCart, &PlacementError{State: StateRejected, Err: ErrEmptyCart})
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	header := order.Header{
		OwnerID:     principal.ID,
		TotalAmount: total,
		Status:      order.StatusPending,
		PaymentRef:  s.paymentRef(),
	}

	// Once the first write starts the attempt runs to completion even if
	// the caller goes away, so a disconnect cannot split header from lines.
	writeCtx := context.WithoutCancel(ctx)

	orderID, err := s.writeOrder(writeCtx, log, header, lines)
	if err != nil {
		return nil, s.fail(log, start, outcomeFor(err), err)
	}
	log = log.WithField("order_id", orderID)

	if err := store.ClearCart(writeCtx); err != nil {
		log.WithError(err).Warn("Failed to clear cart after order creation")
	}

	placed := order.Order{
		ID:          orderID,
		OwnerID:     principal.ID,
		TotalAmount: total,
		Status:      header.Status,
		PaymentRef:  header.PaymentRef,
		CreatedAt:   s.now().UTC(),
		Lines:       toOrderLines(orderID, lines),
	}
	if s.notifier != nil {
		if err := s.notifier.OrderPlaced(writeCtx, placed); err != nil {
			log.WithError(err).Warn("Failed to publish order placed event")
		}
	}

	s.metrics.RecordCheckout(metrics.OutcomeCommitted, s.now().Sub(start))
	log.WithFields(logrus.Fields{
		"state":        StateCommitted,
		"total_amount": total.StringFixed(2),
		"lines":        len(lines),
	}).Info("Order placed")

	return &Result{
		OrderID:     orderID,
		PaymentRef:  header.PaymentRef,
		TotalAmount: total,
		State:       StateCommitted,
	}, nil
}

func (s *Service) writeOrder(ctx context.Context, log logrus.FieldLogger, header order.Header, lines []cart.Line) (string, error) {
	if atomicStore, ok := s.orders.(order.AtomicStore); ok && s.atomic {
		log.WithField("state", StateCreatingHeader).Debug("Writing order with lines")
		orderID, err := atomicStore.InsertOrderWithLines(ctx, header, toOrderLines("", lines))
		if err != nil {
			return "", &PlacementError{State: StateFailedHeader, Err: ErrHeaderWriteFailed, Cause: err}
		}
		return orderID, nil
	}

	log.WithField("state", StateCreatingHeader).Debug("Writing order header")
	orderID, err := s.orders.InsertOrder(ctx, header)
	if err != nil {
		return "", &PlacementError{State: StateFailedHeader, Err: ErrHeaderWriteFailed, Cause: err}
	}

	log.WithFields(logrus.Fields{"state": StateCreatingLines, "order_id": orderID}).Debug("Writing order lines")
	if err := s.orders.InsertOrderLines(ctx, toOrderLines(orderID, lines)); err != nil {
		return "", &PlacementError{State: StateFailedLines, OrderID: orderID, Err: ErrLineWriteFailed, Cause: err}
	}
	return orderID, nil
}

func (s *Service) fail(log logrus.FieldLogger, start time.Time, outcome string, err error) error {
	s.metrics.RecordCheckout(outcome, s.now().Sub(start))

	var pe *PlacementError
	if !errors.As(err, &pe) {
		log.WithError(err).Error("Order placement failed")
		return err
	}

	entry := log.WithError(err).WithField("state", pe.State)
	switch pe.State {
	case StateRejected:
		entry.Info("Order placement rejected")
	case StateFailedLines:
		entry.WithField("order_id", pe.OrderID).Error("Order header stored without lines")
	default:
		entry.Error("Order placement failed")
	}
	return err
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, ErrLineWriteFailed):
		return metrics.OutcomeLinesFailed
	default:
		return metrics.OutcomeHeaderFailed
	}
}

func toOrderLines(orderID string, lines []cart.Line) []order.Line {
	out := make([]order.Line, len(lines))
	for i, l := range lines {
		out[i] = order.Line{
			OrderID:     orderID,
			ProductID:   l.ProductID,
			ProductName: l.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		}
	}
	return out
}
