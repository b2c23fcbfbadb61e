package service

import (
	"context"
	"time"

	"event_management/internal/config"
	"event_management/internal/repository"
	"event_management/pkg/logger"
)

type RateLimitService interface {
	// Allow counts one hit for key and reports whether it is within the
	// configured window. retryAfter is set when the hit is rejected.
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
	Limit() int
}

type rateLimitService struct {
	rateLimitRepo repository.RateLimitRepository
	cfg           config.RateLimitConfig
	log           logger.Logger
}

func NewRateLimitService(rateLimitRepo repository.RateLimitRepository, cfg config.RateLimitConfig, log logger.Logger) RateLimitService {
	return &rateLimitService{
		rateLimitRepo: rateLimitRepo,
		cfg:           cfg,
		log:           log,
	}
}

func (s *rateLimitService) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	count, err := s.rateLimitRepo.Increment(ctx, "ratelimit:"+key, s.cfg.Window)
	if err != nil {
		return false, 0, err
	}
	if count <= int64(s.cfg.Requests) {
		return true, 0, nil
	}

	ttl, err := s.rateLimitRepo.TTL(ctx, "ratelimit:"+key)
	if err != nil || ttl <= 0 {
		ttl = s.cfg.Window
	}
	return false, ttl, nil
}

func (s *rateLimitService) Limit() int {
	return s.cfg.Requests
}
