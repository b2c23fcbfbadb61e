package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"event_management/internal/domain"
	apperrors "event_management/pkg/errors"
	"event_management/pkg/logger"
)

type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Event, error)
	ListByParticipant(ctx context.Context, userID uuid.UUID) ([]*domain.Event, error)
	Update(ctx context.Context, event *domain.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type eventRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewEventRepository(db *pgxpool.Pool, log logger.Logger) EventRepository {
	return &eventRepository{db: db, log: log}
}

// Times are stored as TIME and exchanged as HH:MM text.
const eventColumns = `e.id, e.title, e.event_type, e.start_date, e.end_date,
		       to_char(e.start_time, 'HH24:MI'), to_char(e.end_time, 'HH24:MI'),
		       e.location, e.capacity, e.description, e.organizer_id,
		       (SELECT COUNT(*) FROM registrations r WHERE r.event_id = e.id),
		       e.seat_version, e.created_at, e.updated_at`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	event := &domain.Event{}
	err := row.Scan(
		&event.ID, &event.Title, &event.EventType, &event.StartDate, &event.EndDate,
		&event.StartTime, &event.EndTime,
		&event.Location, &event.Capacity, &event.Description, &event.OrganizerID,
		&event.RegisteredCount, &event.SeatVersion,
		&event.CreatedAt, &event.UpdatedAt,
	)
	return event, err
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (id, title, event_type, start_date, end_date, start_time, end_time,
		                    location, capacity, description, organizer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::text::time, $7::text::time, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		event.ID, event.Title, event.EventType, event.StartDate, event.EndDate, event.StartTime, event.EndTime,
		event.Location, event.Capacity, event.Description, event.OrganizerID, event.CreatedAt, event.UpdatedAt,
	).Scan(&event.CreatedAt, &event.UpdatedAt)

	if err != nil {
		r.log.Error("Failed to create event", "error", err)
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.id = $1`

	event, err := scanEvent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		r.log.Error("Failed to get event", "error", err, "event_id", id)
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (r *eventRepository) List(ctx context.Context, limit, offset int) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		ORDER BY e.start_date, e.start_time, e.title
		LIMIT $1 OFFSET $2
	`
	return r.query(ctx, query, limit, offset)
}

func (r *eventRepository) ListByParticipant(ctx context.Context, userID uuid.UUID) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		JOIN registrations reg ON reg.event_id = e.id
		WHERE reg.user_id = $1
		ORDER BY e.start_date, e.start_time
	`
	return r.query(ctx, query, userID)
}

func (r *eventRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list events", "error", err)
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			r.log.Error("Failed to scan event", "error", err)
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// Update locks the event row so the capacity cannot be lowered under a
// registration that is committing concurrently.
func (r *eventRepository) Update(ctx context.Context, event *domain.Event) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var locked uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, event.ID).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrEventNotFound
		}
		r.log.Error("Failed to lock event", "error", err, "event_id", event.ID)
		return fmt.Errorf("lock event row: %w", err)
	}

	var count int
	if err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM registrations WHERE event_id = $1`, event.ID).Scan(&count); err != nil {
		return fmt.Errorf("count registrations: %w", err)
	}
	if event.Capacity < count {
		err = apperrors.ErrCapacityBelowCount
		return err
	}

	query := `
		UPDATE events
		SET title = $2, event_type = $3, start_date = $4, end_date = $5,
		    start_time = $6::text::time, end_time = $7::text::time,
		    location = $8, capacity = $9, description = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err = tx.QueryRow(ctx, query,
		event.ID, event.Title, event.EventType, event.StartDate, event.EndDate, event.StartTime, event.EndTime,
		event.Location, event.Capacity, event.Description,
	).Scan(&event.UpdatedAt)
	if err != nil {
		r.log.Error("Failed to update event", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to update event: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	event.RegisteredCount = count
	return nil
}

// Delete relies on ON DELETE CASCADE for registrations and certificates.
func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete event", "error", err, "event_id", id)
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}
	return nil
}
