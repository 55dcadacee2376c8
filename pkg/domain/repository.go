package domain

import (
	"context"
	"time"
)

// CatalogStore owns catalog entries and their live stock.
type CatalogStore interface {
	Get(ctx context.Context, id ItemID) (CatalogItem, error)
	List(ctx context.Context) ([]CatalogItem, error)
	DecrementStock(ctx context.Context, id ItemID, amount int) error
	// DecrementStocks applies every change or none of them.
	DecrementStocks(ctx context.Context, changes []StockChange) error
}

// OrderHistory is the append-only record of resolved orders.
type OrderHistory interface {
	Append(ctx context.Context, order Order) error
	List(ctx context.Context) ([]Order, error)
}

type Clock interface {
	Now() time.Time
}

// Timer is a scheduled callback that can be disarmed.
type Timer interface {
	Stop() bool
}

type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type OrderEventPublisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}

type OrderEventSubscriber interface {
	Subscribe(ctx context.Context, routingKey string, handler func(OrderEvent) error) error
}

type IDGenerator interface {
	GenerateID() string
}
