package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"event_management/internal/domain"
	"event_management/pkg/logger"
)

const Topic = "notifications"

type Publisher interface {
	Publish(ctx context.Context, n domain.Notification) error
}

// NewPubSub returns the in-process bus shared by the publisher and the consumer.
func NewPubSub(log logger.Logger) *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NewSlogLogger(logger.Slog(log)),
	)
}

type watermillPublisher struct {
	pub message.Publisher
	log logger.Logger
}

func NewPublisher(pub message.Publisher, log logger.Logger) Publisher {
	return &watermillPublisher{pub: pub, log: log}
}

func (p *watermillPublisher) Publish(ctx context.Context, n domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("kind", n.Kind)
	msg.SetContext(ctx)

	if err := p.pub.Publish(Topic, msg); err != nil {
		p.log.Error("Failed to publish notification", "error", err, "kind", n.Kind)
		return err
	}
	return nil
}
