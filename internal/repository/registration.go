package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"event_management/internal/domain"
	apperrors "event_management/pkg/errors"
	"event_management/pkg/logger"
)

type RegistrationRepository interface {
	// Register admits the user under a lock on the event row and returns the
	// seat state as of the commit.
	Register(ctx context.Context, userID, eventID uuid.UUID) (*domain.Registration, domain.SeatUpdate, error)
	// Cancel removes the registration and returns the seat state as of the commit.
	Cancel(ctx context.Context, userID, eventID uuid.UUID) (uuid.UUID, domain.SeatUpdate, error)
	IsParticipant(ctx context.Context, userID, eventID uuid.UUID) (bool, error)
	Count(ctx context.Context, eventID uuid.UUID) (int, error)
	ListParticipants(ctx context.Context, eventID uuid.UUID) ([]domain.Participant, error)
}

type registrationRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewRegistrationRepository(db *pgxpool.Pool, log logger.Logger) RegistrationRepository {
	return &registrationRepository{db: db, log: log}
}

// lockEvent takes the row lock that serializes every seat change for one event.
func lockEvent(ctx context.Context, tx pgx.Tx, eventID uuid.UUID) (*domain.Event, error) {
	event := &domain.Event{ID: eventID}
	err := tx.QueryRow(ctx,
		`SELECT capacity, organizer_id FROM events WHERE id = $1 FOR UPDATE`,
		eventID,
	).Scan(&event.Capacity, &event.OrganizerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}
	return event, nil
}

// bumpSeatVersion must run inside the transaction holding the event row lock.
func bumpSeatVersion(ctx context.Context, tx pgx.Tx, eventID uuid.UUID) (int64, error) {
	var version int64
	err := tx.QueryRow(ctx,
		`UPDATE events SET seat_version = seat_version + 1 WHERE id = $1 RETURNING seat_version`,
		eventID,
	).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("bump seat version: %w", err)
	}
	return version, nil
}

func (r *registrationRepository) Register(ctx context.Context, userID, eventID uuid.UUID) (_ *domain.Registration, _ domain.SeatUpdate, err error) {
	var seats domain.SeatUpdate
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, seats, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	event, err := lockEvent(ctx, tx, eventID)
	if err != nil {
		return nil, seats, err
	}

	var count int
	var registered bool
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(BOOL_OR(user_id = $2), FALSE) FROM registrations WHERE event_id = $1`,
		eventID, userID,
	).Scan(&count, &registered)
	if err != nil {
		return nil, seats, fmt.Errorf("count registrations: %w", err)
	}

	if err = event.Admit(count, registered); err != nil {
		return nil, seats, err
	}

	reg := &domain.Registration{
		ID:           uuid.New(),
		UserID:       userID,
		EventID:      eventID,
		RegisteredAt: time.Now().UTC(),
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO registrations (id, user_id, event_id, registered_at) VALUES ($1, $2, $3, $4)`,
		reg.ID, reg.UserID, reg.EventID, reg.RegisteredAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			err = apperrors.ErrAlreadyRegistered
			return nil, seats, err
		}
		r.log.Error("Failed to insert registration", "error", err, "event_id", eventID)
		return nil, seats, fmt.Errorf("insert registration: %w", err)
	}

	version, err := bumpSeatVersion(ctx, tx, eventID)
	if err != nil {
		return nil, seats, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, seats, fmt.Errorf("commit transaction: %w", err)
	}

	return reg, domain.NewSeatUpdate(eventID, event.Capacity, count+1, version), nil
}

func (r *registrationRepository) Cancel(ctx context.Context, userID, eventID uuid.UUID) (_ uuid.UUID, _ domain.SeatUpdate, err error) {
	var seats domain.SeatUpdate
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, seats, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	event, err := lockEvent(ctx, tx, eventID)
	if err != nil {
		return uuid.Nil, seats, err
	}

	var regID uuid.UUID
	err = tx.QueryRow(ctx,
		`DELETE FROM registrations WHERE user_id = $1 AND event_id = $2 RETURNING id`,
		userID, eventID,
	).Scan(&regID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = apperrors.ErrNotRegistered
			return uuid.Nil, seats, err
		}
		r.log.Error("Failed to delete registration", "error", err, "event_id", eventID)
		return uuid.Nil, seats, fmt.Errorf("delete registration: %w", err)
	}

	var count int
	if err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM registrations WHERE event_id = $1`, eventID).Scan(&count); err != nil {
		return uuid.Nil, seats, fmt.Errorf("count registrations: %w", err)
	}

	version, err := bumpSeatVersion(ctx, tx, eventID)
	if err != nil {
		return uuid.Nil, seats, err
	}

	if err = tx.Commit(ctx); err != nil {
		return uuid.Nil, seats, fmt.Errorf("commit transaction: %w", err)
	}

	return regID, domain.NewSeatUpdate(eventID, event.Capacity, count, version), nil
}

func (r *registrationRepository) IsParticipant(ctx context.Context, userID, eventID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM registrations WHERE user_id = $1 AND event_id = $2)`,
		userID, eventID,
	).Scan(&exists)
	if err != nil {
		r.log.Error("Failed to check participation", "error", err)
		return false, err
	}
	return exists, nil
}

func (r *registrationRepository) Count(ctx context.Context, eventID uuid.UUID) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM registrations WHERE event_id = $1`, eventID).Scan(&count); err != nil {
		r.log.Error("Failed to count registrations", "error", err)
		return 0, err
	}
	return count, nil
}

func (r *registrationRepository) ListParticipants(ctx context.Context, eventID uuid.UUID) ([]domain.Participant, error) {
	query := `
		SELECT u.id, u.username, TRIM(u.first_name || ' ' || u.last_name), u.email, u.role, reg.registered_at
		FROM registrations reg
		JOIN users u ON u.id = reg.user_id
		WHERE reg.event_id = $1
		ORDER BY reg.registered_at
	`

	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		r.log.Error("Failed to list participants", "error", err)
		return nil, err
	}
	defer rows.Close()

	participants := make([]domain.Participant, 0)
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.UserID, &p.Username, &p.FullName, &p.Email, &p.Role, &p.RegisteredAt); err != nil {
			r.log.Error("Failed to scan participant", "error", err)
			return nil, err
		}
		if p.FullName == "" {
			p.FullName = p.Username
		}
		participants = append(participants, p)
	}

	return participants, rows.Err()
}
