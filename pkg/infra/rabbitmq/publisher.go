package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/sokoide/workshop/software/canteen/pkg/domain"
)

type publisher struct {
	ch *amqp.Channel
}

// NewPublisher returns an OrderEventPublisher backed by the order exchange.
func NewPublisher(ch *amqp.Channel) domain.OrderEventPublisher {
	return &publisher{ch: ch}
}

// RoutingKey is order.<status>, e.g. order.expired.
func RoutingKey(event domain.OrderEvent) string {
	return event.Type
}

func (p *publisher) Publish(ctx context.Context, event domain.OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("could not marshal order event: %w", err)
	}

	return p.ch.PublishWithContext(ctx,
		ExchangeName,      // exchange
		RoutingKey(event), // routing key
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.Order.ID,
			Timestamp:    event.OccurredAt,
			Type:         event.Type,
			Body:         body,
		},
	)
}
