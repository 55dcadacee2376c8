package domain

import "time"

const (
	EventOrderCreated   = "order.created"
	EventOrderCompleted = "order.completed"
	EventOrderCancelled = "order.cancelled"
	EventOrderExpired   = "order.expired"
	EventOrderFailed    = "order.failed"
)

// OrderEvent reports a lifecycle transition of an order.
type OrderEvent struct {
	Type       string    `json:"type"`
	Order      Order     `json:"order"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventTypeFor returns the event type emitted when an order enters status.
func EventTypeFor(status OrderStatus) string {
	switch status {
	case OrderStatusCompleted:
		return EventOrderCompleted
	case OrderStatusCancelled:
		return EventOrderCancelled
	case OrderStatusExpired:
		return EventOrderExpired
	case OrderStatusFailed:
		return EventOrderFailed
	default:
		return EventOrderCreated
	}
}
