package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/sokoide/workshop/software/canteen/pkg/domain"
)

// OrderObserver follows order lifecycle events from a subscriber.
type OrderObserver struct {
	sub    domain.OrderEventSubscriber
	logger *zap.Logger
}

func NewOrderObserver(sub domain.OrderEventSubscriber, logger *zap.Logger) *OrderObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderObserver{sub: sub, logger: logger}
}

// Start subscribes with routingKey and passes every event to handler.
func (o *OrderObserver) Start(ctx context.Context, routingKey string, handler func(domain.OrderEvent) error) error {
	return o.sub.Subscribe(ctx, routingKey, handler)
}

// LogEvents subscribes with routingKey and writes one log line per event.
func (o *OrderObserver) LogEvents(ctx context.Context, routingKey string) error {
	return o.Start(ctx, routingKey, func(e domain.OrderEvent) error {
		fields := []zap.Field{
			zap.String("type", e.Type),
			zap.String("order_id", e.Order.ID),
			zap.String("status", e.Order.Status.String()),
			zap.Int64("total", e.Order.Total),
			zap.Time("occurred_at", e.OccurredAt),
		}
		if e.Order.Reason != "" {
			fields = append(fields, zap.String("reason", e.Order.Reason))
		}
		o.logger.Info("order event", fields...)
		return nil
	})
}
