package service

import (
	"context"

	"openbook-be/internal/pkg/logger"
	"openbook-be/pkg/events"
	"openbook-be/pkg/metrics"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process bus: it counts and logs every
// domain event and forwards it to the external bus when one is configured.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	forward   events.Publisher
	logger    logger.ILogger
}

// NewConsumerService accepts a nil forward publisher.
func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	forward events.Publisher,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		forward:   forward,
		logger:    logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	// every message is acked, failures are only logged
	defer msg.Ack()

	event, err := events.Decode(msg.Payload)
	if err != nil {
		cs.logger.Error("EVENTS", "Failed to decode event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	metrics.DomainEvents.WithLabelValues(event.EventType()).Inc()
	cs.logger.Info("EVENTS", event.EventType(), event.Payload())

	if cs.forward == nil {
		return
	}
	if err := cs.forward.Publish(ctx, event); err != nil {
		cs.logger.Warn("EVENTS", "Failed to forward event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
