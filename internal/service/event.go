package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"event_management/internal/domain"
	"event_management/internal/export"
	"event_management/internal/repository"
	"event_management/internal/validator"
	apperrors "event_management/pkg/errors"
	"event_management/pkg/logger"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 200
)

type EventService interface {
	Create(ctx context.Context, actorID uuid.UUID, req *validator.EventRequest) (*domain.Event, error)
	Get(ctx context.Context, viewerID uuid.UUID, eventID uuid.UUID) (*domain.Event, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Event, error)
	Update(ctx context.Context, actorID, eventID uuid.UUID, req *validator.EventRequest) (*domain.Event, error)
	Delete(ctx context.Context, actorID, eventID uuid.UUID) error
	ExportParticipants(ctx context.Context, actorID, eventID uuid.UUID) (*domain.Event, []byte, error)
}

type eventService struct {
	eventRepo        repository.EventRepository
	userRepo         repository.UserRepository
	registrationRepo repository.RegistrationRepository
	audit            AuditService
	validator        *validator.Validator
	loc              *time.Location
	now              func() time.Time
	log              logger.Logger
}

func NewEventService(
	repos *repository.Repositories,
	audit AuditService,
	v *validator.Validator,
	loc *time.Location,
	log logger.Logger,
) EventService {
	return &eventService{
		eventRepo:        repos.Event,
		userRepo:         repos.User,
		registrationRepo: repos.Registration,
		audit:            audit,
		validator:        v,
		loc:              loc,
		now:              time.Now,
		log:              log,
	}
}

func (s *eventService) today() time.Time {
	return s.now().In(s.loc)
}

// buildEvent validates the request and returns the event fields it describes.
func (s *eventService) buildEvent(req *validator.EventRequest) (*domain.Event, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Location = strings.TrimSpace(req.Location)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	start, err := domain.ParseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := domain.ParseDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateSchedule(start, end, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	event := &domain.Event{
		Title:       req.Title,
		EventType:   req.EventType,
		StartDate:   start,
		EndDate:     end,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
		Capacity:    req.Capacity,
		Description: strings.TrimSpace(req.Description),
	}
	if !event.IsEditable(s.today()) {
		return nil, apperrors.Validation("start date must not be in the past")
	}
	return event, nil
}

func (s *eventService) Create(ctx context.Context, actorID uuid.UUID, req *validator.EventRequest) (*domain.Event, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsOrganizer() {
		return nil, apperrors.ErrOrganizerOnly
	}

	event, err := s.buildEvent(req)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	event.ID = uuid.New()
	event.OrganizerID = actorID
	event.CreatedAt = now
	event.UpdatedAt = now

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, &actorID, domain.AuditActionCreate, domain.EntityEvent, event.ID.String(),
		fmt.Sprintf("event %q created", event.Title))
	s.log.Info("Event created", "event_id", event.ID, "organizer_id", actorID)
	return event, nil
}

// Get includes the participant list only for the event's organizer.
func (s *eventService) Get(ctx context.Context, viewerID uuid.UUID, eventID uuid.UUID) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if viewerID != uuid.Nil && event.IsOwnedBy(viewerID) {
		participants, err := s.registrationRepo.ListParticipants(ctx, eventID)
		if err != nil {
			return nil, err
		}
		event.Participants = participants
	}
	return event, nil
}

func (s *eventService) List(ctx context.Context, limit, offset int) ([]*domain.Event, error) {
	if limit <= 0 {
		limit = defaultEventLimit
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.eventRepo.List(ctx, limit, offset)
}

func (s *eventService) loadOwned(ctx context.Context, actorID, eventID uuid.UUID) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.IsOwnedBy(actorID) {
		return nil, apperrors.ErrNotEventOwner
	}
	return event, nil
}

func (s *eventService) Update(ctx context.Context, actorID, eventID uuid.UUID, req *validator.EventRequest) (*domain.Event, error) {
	existing, err := s.loadOwned(ctx, actorID, eventID)
	if err != nil {
		return nil, err
	}
	if !existing.IsEditable(s.today()) {
		return nil, apperrors.ErrEventAlreadyStarted
	}

	event, err := s.buildEvent(req)
	if err != nil {
		return nil, err
	}
	event.ID = existing.ID
	event.OrganizerID = existing.OrganizerID
	event.CreatedAt = existing.CreatedAt

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, &actorID, domain.AuditActionUpdate, domain.EntityEvent, event.ID.String(),
		fmt.Sprintf("event %q updated", event.Title))
	return event, nil
}

func (s *eventService) Delete(ctx context.Context, actorID, eventID uuid.UUID) error {
	event, err := s.loadOwned(ctx, actorID, eventID)
	if err != nil {
		return err
	}

	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		return err
	}

	s.audit.Record(ctx, &actorID, domain.AuditActionDelete, domain.EntityEvent, eventID.String(),
		fmt.Sprintf("event %q deleted with %d registrations", event.Title, event.RegisteredCount))
	s.log.Info("Event deleted", "event_id", eventID, "organizer_id", actorID)
	return nil
}

func (s *eventService) ExportParticipants(ctx context.Context, actorID, eventID uuid.UUID) (*domain.Event, []byte, error) {
	event, err := s.loadOwned(ctx, actorID, eventID)
	if err != nil {
		return nil, nil, err
	}

	participants, err := s.registrationRepo.ListParticipants(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}

	data, err := export.Participants(event, participants)
	if err != nil {
		s.log.Error("Failed to export participants", "error", err, "event_id", eventID)
		return nil, nil, err
	}
	return event, data, nil
}
