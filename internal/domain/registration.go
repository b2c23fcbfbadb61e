package domain

import (
	"time"

	"github.com/google/uuid"
)

type Registration struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	EventID      uuid.UUID `json:"event_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

type Certificate struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	EventID  uuid.UUID `json:"event_id"`
	IssuedAt time.Time `json:"issued_at"`
}

// SeatUpdate is broadcast whenever an event's participant count changes.
// Version increases by one with every seat change of the event and is
// assigned under the event row lock, so it orders updates that may reach
// subscribers out of order.
type SeatUpdate struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int64     `json:"version"`
	Registered int       `json:"registered"`
	Capacity   int       `json:"capacity"`
	Remaining  int       `json:"remaining"`
	At         time.Time `json:"at"`
}

func NewSeatUpdate(eventID uuid.UUID, capacity, registered int, version int64) SeatUpdate {
	return SeatUpdate{
		EventID:    eventID,
		Version:    version,
		Registered: registered,
		Capacity:   capacity,
		Remaining:  max(capacity-registered, 0),
		At:         time.Now().UTC(),
	}
}

// Supersedes reports whether u should replace a state already at version.
func (u SeatUpdate) Supersedes(version int64) bool {
	return u.Version > version
}
