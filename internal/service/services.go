package service

import (
	"time"

	"event_management/internal/certificate"
	"event_management/internal/config"
	"event_management/internal/notification"
	"event_management/internal/repository"
	"event_management/internal/validator"
	"event_management/pkg/logger"
)

type Services struct {
	Auth         AuthService
	User         UserService
	Event        EventService
	Registration RegistrationService
	Certificate  CertificateService
	Stats        StatsService
	RateLimit    RateLimitService
	Audit        AuditService
	Validator    *validator.Validator
}

func NewServices(
	repos *repository.Repositories,
	notifier notification.Publisher,
	cfg *config.Config,
	log logger.Logger,
) (*Services, error) {
	loc, err := time.LoadLocation(cfg.Certificate.Timezone)
	if err != nil {
		return nil, err
	}

	v := validator.New()
	audit := NewAuditService(repos.Audit, log)
	renderer := certificate.NewRenderer(cfg.Certificate.IssuerName, loc)

	return &Services{
		Auth:         NewAuthService(repos.User, audit, notifier, v, cfg.JWT, log),
		User:         NewUserService(repos.User, audit, v, log),
		Event:        NewEventService(repos, audit, v, loc, log),
		Registration: NewRegistrationService(repos, audit, notifier, cfg.Server.BaseURL, log),
		Certificate:  NewCertificateService(repos, renderer, audit, log),
		Stats:        NewStatsService(repos.Stats, repos.Event, log),
		RateLimit:    NewRateLimitService(repos.RateLimit, cfg.RateLimit, log),
		Audit:        audit,
		Validator:    v,
	}, nil
}
