package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"event_management/pkg/logger"
)

type Repositories struct {
	User         UserRepository
	Event        EventRepository
	Registration RegistrationRepository
	Certificate  CertificateRepository
	Stats        StatsRepository
	Audit        AuditRepository
	RateLimit    RateLimitRepository
	Seats        SeatRepository
}

func NewRepositories(db *pgxpool.Pool, redis *redis.Client, log logger.Logger) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db, log),
		Event:        NewEventRepository(db, log),
		Registration: NewRegistrationRepository(db, log),
		Certificate:  NewCertificateRepository(db, log),
		Stats:        NewStatsRepository(db, log),
		Audit:        NewAuditRepository(db, log),
		RateLimit:    NewRateLimitRepository(redis, log),
		Seats:        NewSeatRepository(redis, log),
	}
}
