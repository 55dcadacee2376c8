package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusExpired   OrderStatus = "expired"
	// OrderStatusFailed marks a payment that could not be honoured because
	// stock vanished between checkout and payment.
	OrderStatusFailed OrderStatus = "failed"
)

func (s OrderStatus) IsTerminal() bool {
	return s != OrderStatusPending && s != ""
}

func (s OrderStatus) String() string {
	return string(s)
}

// ReservationWindow is how long a checked-out order stays pending.
const ReservationWindow = 15 * time.Minute

// Order is a checked-out cart. Lines and Total never change after checkout;
// only Status, Reason and ResolvedAt are set, once, on resolution.
type Order struct {
	ID         string      `json:"id"`
	Lines      []CartLine  `json:"lines"`
	Total      int64       `json:"total"`
	Status     OrderStatus `json:"status"`
	Reason     string      `json:"reason,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	ExpiresAt  time.Time   `json:"expires_at"`
	ResolvedAt *time.Time  `json:"resolved_at,omitempty"`
}

// NewOrder snapshots cart into a pending order expiring window after now.
func NewOrder(id string, cart *Cart, now time.Time, window time.Duration) Order {
	return Order{
		ID:        id,
		Lines:     cart.Lines(),
		Total:     cart.Total(),
		Status:    OrderStatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(window),
	}
}

func (o Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// IsExpiredAt reports whether the reservation window has closed at now.
func (o Order) IsExpiredAt(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// RemainingSeconds is the whole seconds left before expiry, never negative.
func (o Order) RemainingSeconds(now time.Time) int {
	left := o.ExpiresAt.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(left / time.Second)
}

// StockChanges lists the decrements paying for this order requires.
func (o Order) StockChanges() []StockChange {
	out := make([]StockChange, 0, len(o.Lines))
	for _, l := range o.Lines {
		out = append(out, StockChange{ItemID: l.ItemID, Amount: l.Quantity})
	}
	return out
}

// Resolve returns a copy of o moved to the terminal status.
func (o Order) Resolve(status OrderStatus, reason string, at time.Time) Order {
	out := o.Clone()
	out.Status = status
	out.Reason = reason
	out.ResolvedAt = &at
	return out
}

// Clone returns a deep copy so callers never share the lines slice.
func (o Order) Clone() Order {
	out := o
	out.Lines = make([]CartLine, len(o.Lines))
	copy(out.Lines, o.Lines)
	if o.ResolvedAt != nil {
		at := *o.ResolvedAt
		out.ResolvedAt = &at
	}
	return out
}
