package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Routing keys of the events published after a committed state change.
const (
	EventOrderCreated    = "order.created"
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
)

const publishTimeout = 5 * time.Second

// EventPublisher delivers domain events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// publishEvent sends an event after the state change is committed. The change already
// happened, so failures are logged and never returned.
func publishEvent(publisher EventPublisher, logger *zap.Logger, routingKey string, payload interface{}) {
	if publisher == nil {
		logger.Debug("event publisher not configured, skipping event", zap.String("routing_key", routingKey))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := publisher.Publish(ctx, routingKey, payload); err != nil {
		logger.Warn("failed to publish event", zap.String("routing_key", routingKey), zap.Error(err))
	}
}
