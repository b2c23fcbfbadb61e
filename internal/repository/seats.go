package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"event_management/internal/domain"
	"event_management/pkg/logger"
)

// SeatRepository fans seat-count changes out over Redis pub/sub so every
// server instance can push them to its websocket clients.
type SeatRepository interface {
	Publish(ctx context.Context, update domain.SeatUpdate) error
	Subscribe(ctx context.Context, eventID uuid.UUID) (<-chan domain.SeatUpdate, func() error)
}

type seatRepository struct {
	redis *redis.Client
	log   logger.Logger
}

func NewSeatRepository(redis *redis.Client, log logger.Logger) SeatRepository {
	return &seatRepository{redis: redis, log: log}
}

func seatChannel(eventID uuid.UUID) string {
	return "events:" + eventID.String() + ":seats"
}

func (r *seatRepository) Publish(ctx context.Context, update domain.SeatUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return err
	}
	if err := r.redis.Publish(ctx, seatChannel(update.EventID), payload).Err(); err != nil {
		r.log.Error("Failed to publish seat update", "error", err, "event_id", update.EventID)
		return err
	}
	return nil
}

func (r *seatRepository) Subscribe(ctx context.Context, eventID uuid.UUID) (<-chan domain.SeatUpdate, func() error) {
	pubsub := r.redis.Subscribe(ctx, seatChannel(eventID))
	out := make(chan domain.SeatUpdate, 8)

	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var update domain.SeatUpdate
			if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
				r.log.Warn("Dropping malformed seat update", "error", err)
				continue
			}
			select {
			case out <- update:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, pubsub.Close
}
