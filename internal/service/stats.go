package service

import (
	"context"

	"github.com/google/uuid"

	"event_management/internal/domain"
	"event_management/internal/repository"
	apperrors "event_management/pkg/errors"
	"event_management/pkg/logger"
)

type StatsService interface {
	GetEventStats(ctx context.Context, actorID, eventID uuid.UUID) (*domain.EventStats, error)
}

type statsService struct {
	statsRepo repository.StatsRepository
	eventRepo repository.EventRepository
	log       logger.Logger
}

func NewStatsService(statsRepo repository.StatsRepository, eventRepo repository.EventRepository, log logger.Logger) StatsService {
	return &statsService{
		statsRepo: statsRepo,
		eventRepo: eventRepo,
		log:       log,
	}
}

func (s *statsService) GetEventStats(ctx context.Context, actorID, eventID uuid.UUID) (*domain.EventStats, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.IsOwnedBy(actorID) {
		return nil, apperrors.ErrNotEventOwner
	}
	return s.statsRepo.GetEventStats(ctx, eventID)
}
