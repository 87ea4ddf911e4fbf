// internal/pkg/metrics/metrics.go
package metrics

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Checkout outcomes used as the "outcome" label.
const (
	OutcomeCommitted        = "committed"
	OutcomeNotAuthenticated = "not_authenticated"
	OutcomeEmptyCart        = "empty_cart"
	OutcomeHeaderFailed     = "header_failed"
	OutcomeLinesFailed      = "lines_failed"
)

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	checkoutAttempts *prometheus.CounterVec
	checkoutDuration prometheus.Histogram
	orphanedOrders   prometheus.Gauge
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New registers collectors on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers collectors on the given registerer.
// Registering twice on the same registerer returns the existing collectors.
func NewWithRegisterer(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &Metrics{
		checkoutAttempts: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_checkout_attempts_total",
			Help: "Order placement attempts by outcome",
		}, []string{"outcome"})),
		checkoutDuration: register(registerer, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_checkout_duration_seconds",
			Help:    "Duration of order placement attempts in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		})),
		orphanedOrders: register(registerer, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_orphaned_orders",
			Help: "Order headers without lines found by the last reconciliation scan",
		})),
		httpRequests: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"})),
		httpDuration: register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"})),
	}
}

func register[C prometheus.Collector](registerer prometheus.Registerer, collector C) C {
	if err := registerer.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			existing, ok := already.ExistingCollector.(C)
			if !ok {
				panic(fmt.Sprintf("collector already registered with unexpected type: %T", already.ExistingCollector))
			}
			return existing
		}
		panic(fmt.Sprintf("register collector: %v", err))
	}
	return collector
}

// RecordCheckout counts one placement attempt and its duration.
func (m *Metrics) RecordCheckout(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.checkoutAttempts.WithLabelValues(outcome).Inc()
	m.checkoutDuration.Observe(duration.Seconds())
}

// SetOrphanedOrders records the result of the latest reconciliation scan.
func (m *Metrics) SetOrphanedOrders(n int) {
	if m == nil {
		return
	}
	m.orphanedOrders.Set(float64(n))
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
