package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"event_management/internal/domain"
	apperrors "event_management/pkg/errors"
	"event_management/pkg/logger"
)

type StatsRepository interface {
	GetEventStats(ctx context.Context, eventID uuid.UUID) (*domain.EventStats, error)
}

type statsRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewStatsRepository(db *pgxpool.Pool, log logger.Logger) StatsRepository {
	return &statsRepository{db: db, log: log}
}

func (r *statsRepository) GetEventStats(ctx context.Context, eventID uuid.UUID) (*domain.EventStats, error) {
	query := `
		SELECT e.id, e.capacity,
		       (SELECT COUNT(*) FROM registrations r WHERE r.event_id = e.id),
		       (SELECT COUNT(*) FROM certificates c WHERE c.event_id = e.id)
		FROM events e
		WHERE e.id = $1
	`

	stats := &domain.EventStats{}
	err := r.db.QueryRow(ctx, query, eventID).Scan(
		&stats.EventID, &stats.Capacity, &stats.Registered, &stats.CertificatesIssued,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		r.log.Error("Failed to get event stats", "error", err)
		return nil, err
	}

	stats.Remaining = stats.Capacity - stats.Registered
	if stats.Remaining < 0 {
		stats.Remaining = 0
	}
	return stats, nil
}
