package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"event_management/internal/certificate"
	"event_management/internal/domain"
	"event_management/internal/repository"
	apperrors "event_management/pkg/errors"
	"event_management/pkg/logger"
)

type CertificateService interface {
	// Issue returns the certificate for the target user, creating it on the
	// first call, together with its rendered PDF.
	Issue(ctx context.Context, actorID, eventID, userID uuid.UUID) (*domain.Certificate, []byte, error)
}

type certificateService struct {
	certificateRepo  repository.CertificateRepository
	registrationRepo repository.RegistrationRepository
	eventRepo        repository.EventRepository
	userRepo         repository.UserRepository
	renderer         *certificate.Renderer
	audit            AuditService
	log              logger.Logger
}

func NewCertificateService(
	repos *repository.Repositories,
	renderer *certificate.Renderer,
	audit AuditService,
	log logger.Logger,
) CertificateService {
	return &certificateService{
		certificateRepo:  repos.Certificate,
		registrationRepo: repos.Registration,
		eventRepo:        repos.Event,
		userRepo:         repos.User,
		renderer:         renderer,
		audit:            audit,
		log:              log,
	}
}

func (s *certificateService) Issue(ctx context.Context, actorID, eventID, userID uuid.UUID) (*domain.Certificate, []byte, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	if !actor.IsOrganizer() {
		return nil, nil, apperrors.ErrOrganizerOnly
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	participant, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	registered, err := s.registrationRepo.IsParticipant(ctx, userID, eventID)
	if err != nil {
		return nil, nil, err
	}
	if !registered {
		return nil, nil, apperrors.ErrParticipantNotRegistered
	}

	cert, created, err := s.certificateRepo.GetOrCreate(ctx, userID, eventID)
	if err != nil {
		return nil, nil, err
	}
	if created {
		s.audit.Record(ctx, &actorID, domain.AuditActionCreate, domain.EntityCertificate, cert.ID.String(),
			fmt.Sprintf("certificate issued to %s for event %s", participant.Username, eventID))
		s.log.Info("Certificate issued", "certificate_id", cert.ID, "user_id", userID, "event_id", eventID)
	}

	pdf, err := s.renderer.Render(certificate.Data{
		CertificateID:   cert.ID,
		ParticipantName: participant.FullName(),
		Event:           event,
		IssuedAt:        cert.IssuedAt,
	})
	if err != nil {
		s.log.Error("Failed to render certificate", "error", err, "certificate_id", cert.ID)
		return nil, nil, err
	}

	return cert, pdf, nil
}
