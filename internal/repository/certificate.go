package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"event_management/internal/domain"
	"event_management/pkg/logger"
)

type CertificateRepository interface {
	// GetOrCreate returns the single certificate for (user, event) and
	// reports whether this call created it.
	GetOrCreate(ctx context.Context, userID, eventID uuid.UUID) (*domain.Certificate, bool, error)
}

type certificateRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewCertificateRepository(db *pgxpool.Pool, log logger.Logger) CertificateRepository {
	return &certificateRepository{db: db, log: log}
}

func (r *certificateRepository) GetOrCreate(ctx context.Context, userID, eventID uuid.UUID) (*domain.Certificate, bool, error) {
	newID := uuid.New()
	tag, err := r.db.Exec(ctx, `
		INSERT INTO certificates (id, user_id, event_id, issued_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, event_id) DO NOTHING
	`, newID, userID, eventID, time.Now().UTC())
	if err != nil {
		r.log.Error("Failed to insert certificate", "error", err, "event_id", eventID, "user_id", userID)
		return nil, false, fmt.Errorf("insert certificate: %w", err)
	}

	cert := &domain.Certificate{}
	err = r.db.QueryRow(ctx, `
		SELECT id, user_id, event_id, issued_at
		FROM certificates
		WHERE user_id = $1 AND event_id = $2
	`, userID, eventID).Scan(&cert.ID, &cert.UserID, &cert.EventID, &cert.IssuedAt)
	if err != nil {
		r.log.Error("Failed to load certificate", "error", err, "event_id", eventID, "user_id", userID)
		return nil, false, fmt.Errorf("load certificate: %w", err)
	}

	return cert, tag.RowsAffected() == 1, nil
}
