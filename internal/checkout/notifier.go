package checkout

import (
	"context"

	"github.com/seatsupply/ticketing-backend/internal/queue"
	queue_publisher "github.com/seatsupply/ticketing-backend/internal/service"
)

// Notifier delivers order confirmations. The checkout service calls it
// synchronously after commit and only ever logs its errors: a lost
// notification must never fail or undo a committed order.
type Notifier interface {
	OrderConfirmed(ctx context.Context, ev queue.OrderConfirmedEvent) error
}

// QueueNotifier publishes confirmations to the message broker, where
// the order consumer renders and delivers them.
type QueueNotifier struct{}

func (QueueNotifier) OrderConfirmed(ctx context.Context, ev queue.OrderConfirmedEvent) error {
	return queue_publisher.PublishOrderConfirmed(ctx, ev)
}
