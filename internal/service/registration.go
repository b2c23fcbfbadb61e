package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"event_management/internal/domain"
	"event_management/internal/notification"
	"event_management/internal/repository"
	apperrors "event_management/pkg/errors"
	"event_management/pkg/logger"
)

type RegistrationService interface {
	Register(ctx context.Context, actorID, eventID uuid.UUID) (*domain.Registration, error)
	Cancel(ctx context.Context, actorID, eventID uuid.UUID) error
	MyEvents(ctx context.Context, actorID uuid.UUID) ([]*domain.Event, error)
}

type registrationService struct {
	registrationRepo repository.RegistrationRepository
	eventRepo        repository.EventRepository
	userRepo         repository.UserRepository
	seats            repository.SeatRepository
	audit            AuditService
	notifier         notification.Publisher
	baseURL          string
	log              logger.Logger
}

func NewRegistrationService(
	repos *repository.Repositories,
	audit AuditService,
	notifier notification.Publisher,
	baseURL string,
	log logger.Logger,
) RegistrationService {
	return &registrationService{
		registrationRepo: repos.Registration,
		eventRepo:        repos.Event,
		userRepo:         repos.User,
		seats:            repos.Seats,
		audit:            audit,
		notifier:         notifier,
		baseURL:          baseURL,
		log:              log,
	}
}

// Register checks, in order: the event exists, the actor is not an
// organizer, the actor is not yet registered, and a seat is free. The last
// two are decided by the repository under the event row lock.
func (s *registrationService) Register(ctx context.Context, actorID, eventID uuid.UUID) (*domain.Registration, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.IsOrganizer() {
		return nil, apperrors.ErrOrganizerRegistration
	}

	reg, seats, err := s.registrationRepo.Register(ctx, actorID, eventID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, &actorID, domain.AuditActionCreate, domain.EntityRegistration, reg.ID.String(),
		fmt.Sprintf("user %s registered for event %s", actor.Username, eventID))
	if err := s.notifier.Publish(ctx, notification.RegistrationConfirmed(actor, event, s.baseURL)); err != nil {
		s.log.Warn("Failed to queue registration notification", "error", err, "registration_id", reg.ID)
	}
	s.publishSeats(ctx, seats)

	s.log.Info("User registered for event", "user_id", actorID, "event_id", eventID, "participants", seats.Registered)
	return reg, nil
}

func (s *registrationService) Cancel(ctx context.Context, actorID, eventID uuid.UUID) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return err
	}

	regID, seats, err := s.registrationRepo.Cancel(ctx, actorID, eventID)
	if err != nil {
		return err
	}

	s.audit.Record(ctx, &actorID, domain.AuditActionDelete, domain.EntityRegistration, regID.String(),
		fmt.Sprintf("user %s cancelled registration for event %s", actor.Username, eventID))
	if err := s.notifier.Publish(ctx, notification.RegistrationCancelled(actor, event)); err != nil {
		s.log.Warn("Failed to queue cancellation notification", "error", err, "registration_id", regID)
	}
	s.publishSeats(ctx, seats)

	s.log.Info("User cancelled registration", "user_id", actorID, "event_id", eventID, "participants", seats.Registered)
	return nil
}

func (s *registrationService) MyEvents(ctx context.Context, actorID uuid.UUID) ([]*domain.Event, error) {
	return s.eventRepo.ListByParticipant(ctx, actorID)
}

// publishSeats forwards the state committed by the repository. Subscribers
// order updates by Version, so publishing after commit may race freely.
func (s *registrationService) publishSeats(ctx context.Context, update domain.SeatUpdate) {
	if err := s.seats.Publish(context.WithoutCancel(ctx), update); err != nil {
		s.log.Warn("Failed to publish seat update", "error", err, "event_id", update.EventID)
	}
}
