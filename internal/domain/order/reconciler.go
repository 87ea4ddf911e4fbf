// internal/domain/order/reconciler.go
package order

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Akshat090803/ecommerce-final-project/internal/pkg/metrics"
)

// Reconciler periodically reports order headers that never received lines.
// It only reports; orphaned headers are left for manual handling.
type Reconciler struct {
	finder   OrphanFinder
	interval time.Duration
	grace    time.Duration
	metrics  *metrics.Metrics
	logger   logrus.FieldLogger
	now      func() time.Time
}

// NewReconciler creates a reconciler. Headers younger than grace are skipped
// because their lines may still be in flight.
func NewReconciler(finder OrphanFinder, interval, grace time.Duration, m *metrics.Metrics, logger logrus.FieldLogger) *Reconciler {
	return &Reconciler{
		finder:   finder,
		interval: interval,
		grace:    grace,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Run scans immediately and then every interval until ctx is done.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.WithField("interval", r.interval.String()).Info("Order reconciler started")

	for {
		if _, err := r.Scan(ctx); err != nil && ctx.Err() == nil {
			r.logger.WithError(err).Error("Orphaned order scan failed")
		}

		select {
		case <-ctx.Done():
			r.logger.Info("Order reconciler stopped")
			return
		case <-ticker.C:
		}
	}
}

// Scan runs one reconciliation pass and returns the orphaned headers found.
func (r *Reconciler) Scan(ctx context.Context) ([]Order, error) {
	cutoff := r.now().Add(-r.grace)

	orphans, err := r.finder.FindOrphanedHeaders(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	for _, o := range orphans {
		r.logger.WithFields(logrus.Fields{
			"order_id":     o.ID,
			"owner_id":     o.OwnerID,
			"payment_ref":  o.PaymentRef,
			"total_amount": o.TotalAmount.StringFixed(2),
			"created_at":   o.CreatedAt,
		}).Warn("Order header has no lines")
	}
	r.metrics.SetOrphanedOrders(len(orphans))

	return orphans, nil
}
