package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"openbook-be/internal/pkg/logger"
	"openbook-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *capturePublisher) Publish(_ context.Context, event events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *capturePublisher) snapshot() []events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]events.Event(nil), c.events...)
}

func TestEventBus_ForwardsPublishedEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	forward := &capturePublisher{}
	consumer := NewConsumerService(pubSub, "test-events", forward, logger.NewNop())
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService("test-events", pubSub)
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, publisher.Publish(ctx, events.ChatSessionStarted("s-1", "octocat", at)))

	assert.Eventually(t, func() bool { return len(forward.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)

	got := forward.snapshot()[0]
	assert.Equal(t, events.TypeChatSessionStarted, got.EventType())
	assert.Equal(t, "s-1", got.Payload()["session_id"])
	assert.True(t, got.Timestamp().Equal(at))
}
