package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"event_management/internal/domain"
	"event_management/pkg/logger"
)

// AuditRepository is append-only.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

type auditRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewAuditRepository(db *pgxpool.Pool, log logger.Logger) AuditRepository {
	return &auditRepository{db: db, log: log}
}

func (r *auditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	query := `
		INSERT INTO audit_log (actor_user_id, action, entity_type, entity_id, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		entry.ActorUserID, entry.Action, entry.EntityType, entry.EntityID, entry.Description, entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		r.log.Error("Failed to create audit log", "error", err, "action", entry.Action, "entity", entry.EntityType)
		return err
	}

	return nil
}

func (r *auditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	var (
		where []string
		args  []any
	)
	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		where = append(where, "entity_type = $"+strconv.Itoa(len(args)))
	}
	if filter.Action != "" {
		args = append(args, filter.Action)
		where = append(where, "action = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT id, actor_user_id, action, entity_type, entity_id, description, created_at FROM audit_log`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list audit logs", "error", err)
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.AuditLog, 0)
	for rows.Next() {
		e := &domain.AuditLog{}
		if err := rows.Scan(&e.ID, &e.ActorUserID, &e.Action, &e.EntityType, &e.EntityID, &e.Description, &e.CreatedAt); err != nil {
			r.log.Error("Failed to scan audit log", "error", err)
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
