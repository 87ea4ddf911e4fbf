package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_InsertAndList(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	first, err := store.InsertOrder(ctx, Header{OwnerID: "u1", TotalAmount: decimal.NewFromInt(10), PaymentRef: "payment_a"})
	require.NoError(t, err)
	require.NoError(t, store.InsertOrderLines(ctx, []Line{{OrderID: first, ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}}))

	store.now = func() time.Time { return base.Add(time.Minute) }
	second, err := store.InsertOrder(ctx, Header{OwnerID: "u1", PaymentRef: "payment_b"})
	require.NoError(t, err)

	_, err = store.InsertOrder(ctx, Header{OwnerID: "u2"})
	require.NoError(t, err)

	orders, err := store.ListOrdersForOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second, orders[0].ID)
	assert.Equal(t, StatusPending, orders[0].Status)
	assert.True(t, orders[0].IsOrphaned())
	assert.Equal(t, first, orders[1].ID)
	assert.Len(t, orders[1].Lines, 1)
}

func TestMemoryStore_GetOrder(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.InsertOrderWithLines(ctx, Header{OwnerID: "u1"}, []Line{{ProductID: "p1", Quantity: 2}})
	require.NoError(t, err)

	o, err := store.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "u1", o.OwnerID)
	require.Len(t, o.Lines, 1)

	o.Lines[0].Quantity = 99
	again, err := store.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Lines[0].Quantity)

	_, err = store.GetOrder(ctx, "missing")
	assert.ErrorIs(t, err, ErrUnknownOrder)
}

func TestMemoryStore_InsertOrderLinesValidation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.InsertOrderLines(ctx, nil), ErrNoLines)
	assert.ErrorIs(t, store.InsertOrderLines(ctx, []Line{{OrderID: "nope", ProductID: "p1", Quantity: 1}}), ErrUnknownOrder)
}

func TestMemoryStore_FailureInjection(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	boom := errors.New("boom")

	store.FailInsertOrder(boom)
	_, err := store.InsertOrder(ctx, Header{OwnerID: "u1"})
	assert.ErrorIs(t, err, boom)
	store.FailInsertOrder(nil)

	id, err := store.InsertOrder(ctx, Header{OwnerID: "u1"})
	require.NoError(t, err)

	store.FailInsertOrderLines(boom)
	assert.ErrorIs(t, store.InsertOrderLines(ctx, []Line{{OrderID: id, ProductID: "p1", Quantity: 1}}), boom)

	store.FailInsertOrderWithLines(boom)
	_, err = store.InsertOrderWithLines(ctx, Header{OwnerID: "u1"}, []Line{{ProductID: "p1", Quantity: 1}})
	assert.ErrorIs(t, err, boom)

	store.FailList(boom)
	_, err = store.ListOrdersForOwner(ctx, "u1")
	assert.ErrorIs(t, err, boom)

	assert.Len(t, store.Orders(), 1)
}

func TestMemoryStore_InsertOrderWithLines(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.InsertOrderWithLines(ctx, Header{OwnerID: "u1"}, []Line{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	})
	require.NoError(t, err)

	orders := store.Orders()
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Lines, 2)
	assert.Equal(t, id, orders[0].Lines[1].OrderID)

	_, err = store.InsertOrderWithLines(ctx, Header{OwnerID: "u1"}, nil)
	assert.ErrorIs(t, err, ErrNoLines)
	assert.Len(t, store.Orders(), 1)
}

func TestMemoryStore_FindOrphanedHeaders(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	store.now = func() time.Time { return base }
	old, err := store.InsertOrder(ctx, Header{OwnerID: "u1"})
	require.NoError(t, err)
	complete, err := store.InsertOrder(ctx, Header{OwnerID: "u1"})
	require.NoError(t, err)
	require.NoError(t, store.InsertOrderLines(ctx, []Line{{OrderID: complete, ProductID: "p1", Quantity: 1}}))

	store.now = func() time.Time { return base.Add(10 * time.Minute) }
	_, err = store.InsertOrder(ctx, Header{OwnerID: "u1"})
	require.NoError(t, err)

	orphans, err := store.FindOrphanedHeaders(ctx, base.Add(5*time.Minute))
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, old, orphans[0].ID)
}
