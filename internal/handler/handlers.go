package handler

import (
	"event_management/internal/config"
	"event_management/internal/repository"
	"event_management/internal/service"
	"event_management/pkg/logger"
)

type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	User         *UserHandler
	Event        *EventHandler
	Registration *RegistrationHandler
	Certificate  *CertificateHandler
	Stats        *StatsHandler
	Audit        *AuditHandler
	WebSocket    *WebSocketHandler
	Web          *WebHandler
}

func NewHandlers(services *service.Services, repos *repository.Repositories, deps map[string]Pinger, cfg *config.Config, log logger.Logger) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(deps),
		Auth:         NewAuthHandler(services.Auth, log),
		User:         NewUserHandler(services.User, log),
		Event:        NewEventHandler(services.Event, log),
		Registration: NewRegistrationHandler(services.Registration, log),
		Certificate:  NewCertificateHandler(services.Certificate, log),
		Stats:        NewStatsHandler(services.Stats, log),
		Audit:        NewAuditHandler(services.Audit, services.Validator, log),
		WebSocket:    NewWebSocketHandler(services.Event, repos.Seats, log),
		Web:          NewWebHandler(services, cfg, log),
	}
}
