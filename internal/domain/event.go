package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "event_management/pkg/errors"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

const (
	EventTypeWorkshop = "workshop"
	EventTypeLecture  = "lecture"
	EventTypeSeminar  = "seminar"
)

const MaxEventCapacity = 100_000

type Event struct {
	ID              uuid.UUID     `json:"id"`
	Title           string        `json:"title"`
	EventType       string        `json:"event_type"`
	StartDate       time.Time     `json:"start_date"`
	EndDate         time.Time     `json:"end_date"`
	StartTime       string        `json:"start_time"`
	EndTime         string        `json:"end_time"`
	Location        string        `json:"location"`
	Capacity        int           `json:"capacity"`
	Description     string        `json:"description"`
	OrganizerID     uuid.UUID     `json:"organizer_id"`
	RegisteredCount int           `json:"registered_count"`
	SeatVersion     int64         `json:"seat_version"`
	Participants    []Participant `json:"participants,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Participant is a user as seen through their registration for one event.
type Participant struct {
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	RegisteredAt time.Time `json:"registered_at"`
}

type EventStats struct {
	EventID            uuid.UUID `json:"event_id"`
	Capacity           int       `json:"capacity"`
	Registered         int       `json:"registered"`
	Remaining          int       `json:"remaining"`
	CertificatesIssued int       `json:"certificates_issued"`
}

func ValidEventType(t string) bool {
	switch t {
	case EventTypeWorkshop, EventTypeLecture, EventTypeSeminar:
		return true
	}
	return false
}

func (e *Event) IsOwnedBy(userID uuid.UUID) bool {
	return e.OrganizerID == userID
}

// IsEditable reports whether the event has not started as of today.
func (e *Event) IsEditable(now time.Time) bool {
	return !e.StartDate.Before(truncateDay(now))
}

func (e *Event) Remaining() int {
	if e.RegisteredCount >= e.Capacity {
		return 0
	}
	return e.Capacity - e.RegisteredCount
}

// Admit applies the registration rules to a locked view of the event.
// Duplicate registration is reported before capacity.
func (e *Event) Admit(participants int, alreadyRegistered bool) error {
	if alreadyRegistered {
		return apperrors.ErrAlreadyRegistered
	}
	if participants >= e.Capacity {
		return apperrors.ErrCapacityReached
	}
	return nil
}

// ValidateSchedule checks that the event ends at or after it starts.
// Times are only compared when both dates are the same day.
func ValidateSchedule(startDate, endDate time.Time, startTime, endTime string) error {
	if endDate.Before(startDate) {
		return apperrors.Validation("end date must not precede start date")
	}
	st, err := time.Parse(TimeLayout, startTime)
	if err != nil {
		return apperrors.Validation(fmt.Sprintf("invalid start time %q, expected HH:MM", startTime))
	}
	et, err := time.Parse(TimeLayout, endTime)
	if err != nil {
		return apperrors.Validation(fmt.Sprintf("invalid end time %q, expected HH:MM", endTime))
	}
	if endDate.Equal(startDate) && et.Before(st) {
		return apperrors.Validation("end time must not precede start time on a single-day event")
	}
	return nil
}

func ParseDate(value string) (time.Time, error) {
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, apperrors.Validation(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", value))
	}
	return d, nil
}

func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	return json.Marshal(struct {
		alias
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
		Remaining int    `json:"remaining"`
	}{
		alias:     alias(e),
		StartDate: e.StartDate.Format(DateLayout),
		EndDate:   e.EndDate.Format(DateLayout),
		Remaining: e.Remaining(),
	})
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
