package notification

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"

	"event_management/internal/domain"
	"event_management/pkg/logger"
)

type Consumer struct {
	sub    message.Subscriber
	mailer Mailer
	log    logger.Logger
}

func NewConsumer(sub message.Subscriber, mailer Mailer, log logger.Logger) *Consumer {
	return &Consumer{sub: sub, mailer: mailer, log: log}
}

// Start subscribes and delivers notifications in the background until ctx is
// cancelled. The returned channel is closed once the consumer has stopped.
// Delivery failures are logged and acked; mail is best effort.
func (c *Consumer) Start(ctx context.Context) (<-chan struct{}, error) {
	messages, err := c.sub.Subscribe(ctx, Topic)
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.log.Info("Notification consumer started")
		for msg := range messages {
			c.handle(ctx, msg)
		}
		c.log.Info("Notification consumer stopped")
	}()
	return done, nil
}

func (c *Consumer) handle(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var n domain.Notification
	if err := json.Unmarshal(msg.Payload, &n); err != nil {
		c.log.Warn("Dropping malformed notification", "error", err, "message_id", msg.UUID)
		return
	}
	if err := c.mailer.Send(ctx, n); err != nil {
		c.log.Error("Failed to deliver notification", "error", err, "kind", n.Kind)
	}
}
