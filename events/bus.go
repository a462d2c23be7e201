package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"
)

// Handler consumes one message. A returned error is logged; the message is
// acked regardless so a failing side effect is never redelivered forever.
type Handler func(ctx context.Context, msg *message.Message) error

// Bus is the in-process publish/subscribe channel.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter
}

// NewBus returns a bus backed by a watermill go channel.
func NewBus(logger *zap.Logger) *Bus {
	adapter := NewZapLoggerAdapter(logger)
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, adapter),
		logger: adapter,
	}
}

// Publish sends payload as JSON on topic.
func (b *Bus) Publish(topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", topic, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("topic", topic)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe starts a goroutine feeding topic messages to handler until ctx
// is cancelled or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context, topic string, handler Handler) error {
	msgs, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	b.logger.Info("Subscribed", watermill.LogFields{"topic": topic})

	go b.process(ctx, topic, msgs, handler)
	return nil
}

func (b *Bus) process(ctx context.Context, topic string, msgs <-chan *message.Message, handler Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			if err := handler(ctx, msg); err != nil {
				b.logger.Error("Event handler failed", err, watermill.LogFields{
					"topic":      topic,
					"message_id": msg.UUID,
				})
			}
			msg.Ack()
		}
	}
}

// Close stops every subscription.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// Decode unmarshals a message payload into v.
func Decode(msg *message.Message, v any) error {
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("decode message %s: %w", msg.UUID, err)
	}
	return nil
}
