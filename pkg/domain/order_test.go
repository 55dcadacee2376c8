package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func TestNewOrder_SnapshotsCart(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add(item("a", 25, 5)))
	require.NoError(t, c.Add(item("a", 25, 5)))

	o := NewOrder("ORD-1", c, t0, ReservationWindow)

	assert.Equal(t, OrderStatusPending, o.Status)
	assert.Equal(t, int64(50), o.Total)
	assert.Equal(t, t0.Add(15*time.Minute), o.ExpiresAt)

	require.NoError(t, c.Add(item("a", 25, 5)))
	c.Remove("a")
	c.Remove("a")
	assert.Equal(t, 2, o.Lines[0].Quantity)
	assert.Equal(t, int64(50), o.Total)
}

func TestOrder_RemainingSeconds(t *testing.T) {
	o := Order{ExpiresAt: t0.Add(90 * time.Second)}

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"full window", t0, 90},
		{"floors partial seconds", t0.Add(500 * time.Millisecond), 89},
		{"exactly at expiry", t0.Add(90 * time.Second), 0},
		{"after expiry clamps", t0.Add(2 * time.Minute), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, o.RemainingSeconds(tt.now))
		})
	}
}

func TestOrder_IsExpiredAtUsesExactComparison(t *testing.T) {
	o := Order{ExpiresAt: t0}

	assert.False(t, o.IsExpiredAt(t0.Add(-time.Nanosecond)))
	assert.True(t, o.IsExpiredAt(t0))
}

func TestOrder_ResolveDoesNotShareLines(t *testing.T) {
	o := Order{ID: "ORD-1", Status: OrderStatusPending, Lines: []CartLine{{ItemID: "a", Quantity: 1}}}

	done := o.Resolve(OrderStatusCompleted, "", t0)
	done.Lines[0].Quantity = 5

	assert.Equal(t, OrderStatusPending, o.Status)
	assert.Equal(t, 1, o.Lines[0].Quantity)
	assert.True(t, done.Status.IsTerminal())
	require.NotNil(t, done.ResolvedAt)
	assert.Equal(t, t0, *done.ResolvedAt)
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	assert.False(t, OrderStatusPending.IsTerminal())
	for _, s := range []OrderStatus{OrderStatusCompleted, OrderStatusCancelled, OrderStatusExpired, OrderStatusFailed} {
		assert.True(t, s.IsTerminal(), s)
	}
}

func TestOrder_StockChanges(t *testing.T) {
	o := Order{Lines: []CartLine{{ItemID: "a", Quantity: 3}, {ItemID: "b", Quantity: 1}}}

	assert.Equal(t, []StockChange{{ItemID: "a", Amount: 3}, {ItemID: "b", Amount: 1}}, o.StockChanges())
}

func TestCode(t *testing.T) {
	assert.Equal(t, "", Code(nil))
	assert.Equal(t, "NOT_FOUND", Code(fmt.Errorf("%w: x", ErrNotFound)))
	assert.Equal(t, "INSUFFICIENT_STOCK", Code(ErrInsufficientStock))
	assert.Equal(t, "EMPTY_CART", Code(ErrEmptyCart))
	assert.Equal(t, "ORDER_ALREADY_PENDING", Code(ErrOrderAlreadyPending))
	assert.Equal(t, "ORDER_EXPIRED", Code(ErrOrderExpired))
	assert.Equal(t, "NO_PENDING_ORDER", Code(ErrNoPendingOrder))
	assert.Equal(t, "INTERNAL", Code(errors.New("boom")))
}

func TestEventTypeFor(t *testing.T) {
	assert.Equal(t, EventOrderCreated, EventTypeFor(OrderStatusPending))
	assert.Equal(t, EventOrderCompleted, EventTypeFor(OrderStatusCompleted))
	assert.Equal(t, EventOrderFailed, EventTypeFor(OrderStatusFailed))
}
