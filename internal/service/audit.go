package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"event_management/internal/domain"
	"event_management/internal/repository"
	"event_management/pkg/logger"
)

const (
	auditFailureBuffer = 128
	auditRetryTimeout  = 5 * time.Second
	defaultAuditLimit  = 50
)

type AuditService interface {
	// Record appends an entry after the business write has committed.
	// It never fails the caller; write errors go to the retry drain.
	Record(ctx context.Context, actor *uuid.UUID, action, entityType, entityID, description string)
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
	// Run drains failed writes until ctx is cancelled.
	Run(ctx context.Context)
}

type auditFailure struct {
	entry *domain.AuditLog
	err   error
}

type auditService struct {
	auditRepo repository.AuditRepository
	failures  chan auditFailure
	log       logger.Logger
}

func NewAuditService(auditRepo repository.AuditRepository, log logger.Logger) AuditService {
	return &auditService{
		auditRepo: auditRepo,
		failures:  make(chan auditFailure, auditFailureBuffer),
		log:       log.With("component", "audit"),
	}
}

func (s *auditService) Record(ctx context.Context, actor *uuid.UUID, action, entityType, entityID, description string) {
	entry := &domain.AuditLog{
		ActorUserID: actor,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}

	// the entry outlives a request that was cancelled after its commit
	err := s.auditRepo.Create(context.WithoutCancel(ctx), entry)
	if err == nil {
		return
	}

	select {
	case s.failures <- auditFailure{entry: entry, err: err}:
	default:
		s.log.Error("Audit entry dropped, failure queue full",
			"error", err, "action", action, "entity_type", entityType, "entity_id", entityID)
	}
}

func (s *auditService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-s.failures:
			s.retry(ctx, f)
		}
	}
}

func (s *auditService) retry(ctx context.Context, f auditFailure) {
	s.log.Error("Audit write failed, retrying",
		"error", f.err, "action", f.entry.Action, "entity_type", f.entry.EntityType, "entity_id", f.entry.EntityID)

	retryCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditRetryTimeout)
	defer cancel()

	if err := s.auditRepo.Create(retryCtx, f.entry); err != nil {
		s.log.Error("Audit entry dropped after retry",
			"error", err, "action", f.entry.Action, "entity_type", f.entry.EntityType, "entity_id", f.entry.EntityID)
	}
}

func (s *auditService) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultAuditLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.auditRepo.List(ctx, filter)
}
