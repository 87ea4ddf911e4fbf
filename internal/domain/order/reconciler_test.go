package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akshat090803/ecommerce-final-project/internal/pkg/metrics"
)

type failingFinder struct{ err error }

func (f failingFinder) FindOrphanedHeaders(context.Context, time.Time) ([]Order, error) {
	return nil, f.err
}

func TestReconcilerScan_ReportsOrphansPastGracePeriod(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	store.now = func() time.Time { return base }
	orphan, err := store.InsertOrder(ctx, Header{OwnerID: "u1", PaymentRef: "payment_x"})
	require.NoError(t, err)

	store.now = func() time.Time { return base.Add(9 * time.Minute) }
	_, err = store.InsertOrder(ctx, Header{OwnerID: "u1"})
	require.NoError(t, err)

	log, hook := test.NewNullLogger()
	r := NewReconciler(store, time.Minute, 2*time.Minute, metrics.NewWithRegisterer(prometheus.NewRegistry()), log)
	r.now = func() time.Time { return base.Add(10 * time.Minute) }

	found, err := r.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, orphan, found[0].ID)

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, orphan, hook.LastEntry().Data["order_id"])

	assert.Len(t, store.Orders(), 2)
}

func TestReconcilerScan_FinderError(t *testing.T) {
	log, _ := test.NewNullLogger()
	boom := errors.New("db down")
	r := NewReconciler(failingFinder{err: boom}, time.Minute, time.Minute, nil, log)

	_, err := r.Scan(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestReconcilerRun_StopsOnCancel(t *testing.T) {
	log, _ := test.NewNullLogger()
	r := NewReconciler(NewMemoryStore(), 10*time.Millisecond, time.Minute, nil, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop")
	}
}
