package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/sokoide/workshop/software/canteen/pkg/domain"
)

type subscriber struct {
	ch     *amqp.Channel
	logger *zap.Logger
}

// NewSubscriber returns an OrderEventSubscriber reading from the order
// exchange through a temporary exclusive queue.
func NewSubscriber(ch *amqp.Channel, logger *zap.Logger) domain.OrderEventSubscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &subscriber{ch: ch, logger: logger}
}

func (s *subscriber) Subscribe(ctx context.Context, routingKey string, handler func(domain.OrderEvent) error) error {
	q, err := s.ch.QueueDeclare(
		"",    // random name
		false, // non-durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("could not declare queue: %w", err)
	}

	err = s.ch.QueueBind(
		q.Name,       // queue name
		routingKey,   // routing key
		ExchangeName, // exchange
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("could not bind queue: %w", err)
	}

	msgs, err := s.ch.Consume(
		q.Name, // queue
		"",     // consumer tag
		true,   // auto-ack
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return fmt.Errorf("could not start consume: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					return
				}
				s.deliver(d.Body, handler)
			}
		}
	}()

	return nil
}

func (s *subscriber) deliver(body []byte, handler func(domain.OrderEvent) error) {
	var event domain.OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.logger.Warn("dropping malformed order event", zap.Error(err))
		return
	}
	if err := handler(event); err != nil {
		s.logger.Warn("order event handler failed", zap.String("order_id", event.Order.ID), zap.Error(err))
	}
}
