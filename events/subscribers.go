package events

import (
	"context"

	"go.uber.org/zap"
)

// Start wires the document writer and, when configured, the webhook
// notifier to the bus.
func Start(ctx context.Context, bus *Bus, docs *Documents, notifier *Notifier, logger *zap.Logger) error {
	if docs != nil {
		if err := bus.Subscribe(ctx, TopicResultsNormalized, docs.HandleResults); err != nil {
			return err
		}
	}
	if notifier == nil {
		logger.Info("no webhook configured, notifications disabled")
		return nil
	}
	for _, topic := range AllTopics {
		if err := bus.Subscribe(ctx, topic, notifier.Handle); err != nil {
			return err
		}
	}
	return nil
}
