package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordCheckout(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.RecordCheckout(OutcomeCommitted, 10*time.Millisecond)
	m.RecordCheckout(OutcomeCommitted, 20*time.Millisecond)
	m.RecordCheckout(OutcomeEmptyCart, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.checkoutAttempts.WithLabelValues(OutcomeCommitted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.checkoutAttempts.WithLabelValues(OutcomeEmptyCart)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.checkoutAttempts.WithLabelValues(OutcomeLinesFailed)))
}

func TestSetOrphanedOrders(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.SetOrphanedOrders(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.orphanedOrders))

	m.SetOrphanedOrders(0)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.orphanedOrders))
}

func TestRecordHTTPRequest_UnmatchedRoute(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.RecordHTTPRequest("GET", "", 404, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestNewWithRegisterer_ReusesExistingCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewWithRegisterer(reg)
	second := NewWithRegisterer(reg)

	first.RecordCheckout(OutcomeCommitted, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(second.checkoutAttempts.WithLabelValues(OutcomeCommitted)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordCheckout(OutcomeCommitted, time.Millisecond)
		m.SetOrphanedOrders(1)
		m.RecordHTTPRequest("GET", "/x", 200, time.Millisecond)
	})
}
