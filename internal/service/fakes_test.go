package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"event_management/internal/config"
	"event_management/internal/domain"
	"event_management/internal/repository"
	apperrors "event_management/pkg/errors"
	"event_management/pkg/logger"
)

// store is an in-memory stand-in for Postgres and Redis. Its mutex plays the
// role of the event row lock.
type store struct {
	mu            sync.Mutex
	users         map[uuid.UUID]*domain.User
	sessions      map[string]*domain.UserSession
	events        map[uuid.UUID]*domain.Event
	registrations map[uuid.UUID]map[uuid.UUID]*domain.Registration
	certificates  map[[2]uuid.UUID]*domain.Certificate
	audit         []*domain.AuditLog
	auditErr      error
	seatUpdates   []domain.SeatUpdate
	notifications []domain.Notification
	counters      map[string]int64
}

func newStore() *store {
	return &store{
		users:         make(map[uuid.UUID]*domain.User),
		sessions:      make(map[string]*domain.UserSession),
		events:        make(map[uuid.UUID]*domain.Event),
		registrations: make(map[uuid.UUID]map[uuid.UUID]*domain.Registration),
		certificates:  make(map[[2]uuid.UUID]*domain.Certificate),
		counters:      make(map[string]int64),
	}
}

func (s *store) repositories() *repository.Repositories {
	return &repository.Repositories{
		User:         &fakeUserRepo{s},
		Event:        &fakeEventRepo{s},
		Registration: &fakeRegistrationRepo{s},
		Certificate:  &fakeCertificateRepo{s},
		Stats:        &fakeStatsRepo{s},
		Audit:        &fakeAuditRepo{s},
		RateLimit:    &fakeRateLimitRepo{s},
		Seats:        &fakeSeatRepo{s},
	}
}

func (s *store) addUser(username, role string) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &domain.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
		IsActive: true,
	}
	s.users[u.ID] = u
	return u
}

func (s *store) addEvent(organizer uuid.UUID, capacity int, start time.Time) *domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &domain.Event{
		ID:          uuid.New(),
		Title:       "Event",
		EventType:   domain.EventTypeLecture,
		StartDate:   start,
		EndDate:     start,
		StartTime:   "10:00",
		EndTime:     "11:00",
		Location:    "Hall",
		Capacity:    capacity,
		OrganizerID: organizer,
	}
	s.events[e.ID] = e
	return e
}

func (s *store) auditActions(entityType string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, a := range s.audit {
		if a.EntityType == entityType {
			out = append(out, a.Action)
		}
	}
	return out
}

func (s *store) participantCount(eventID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.registrations[eventID])
}

type fakeUserRepo struct{ s *store }

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return apperrors.ErrUserAlreadyExists
		}
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return apperrors.ErrUserNotFound
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, id uuid.UUID, role string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (r *fakeUserRepo) TouchLastLogin(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	if u, ok := r.s.users[id]; ok {
		u.LastLoginAt = &now
	}
	return nil
}

func (r *fakeUserRepo) CreateSession(_ context.Context, session *domain.UserSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *session
	r.s.sessions[session.RefreshTokenHash] = &cp
	return nil
}

func (r *fakeUserRepo) GetSessionByTokenHash(_ context.Context, tokenHash string) (*domain.UserSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[tokenHash]
	if !ok || sess.RevokedAt != nil || time.Now().After(sess.ExpiresAt) {
		return nil, apperrors.ErrSessionNotFound
	}
	cp := *sess
	return &cp, nil
}

func (r *fakeUserRepo) RevokeSession(_ context.Context, sessionID uuid.UUID, reason string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	for _, sess := range r.s.sessions {
		if sess.ID == sessionID {
			sess.RevokedAt = &now
			sess.RevokedReason = &reason
		}
	}
	return nil
}

type fakeEventRepo struct{ s *store }

func (r *fakeEventRepo) withCount(e *domain.Event) *domain.Event {
	cp := *e
	cp.RegisteredCount = len(r.s.registrations[e.ID])
	return &cp
}

func (r *fakeEventRepo) Create(_ context.Context, event *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *event
	r.s.events[event.ID] = &cp
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	return r.withCount(e), nil
}

func (r *fakeEventRepo) List(_ context.Context, limit, offset int) ([]*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.Event, 0, len(r.s.events))
	for _, e := range r.s.events {
		out = append(out, r.withCount(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	if offset >= len(out) {
		return []*domain.Event{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeEventRepo) ListByParticipant(_ context.Context, userID uuid.UUID) ([]*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.Event, 0)
	for id, regs := range r.s.registrations {
		if _, ok := regs[userID]; ok {
			out = append(out, r.withCount(r.s.events[id]))
		}
	}
	return out, nil
}

func (r *fakeEventRepo) Update(_ context.Context, event *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[event.ID]; !ok {
		return apperrors.ErrEventNotFound
	}
	if event.Capacity < len(r.s.registrations[event.ID]) {
		return apperrors.ErrCapacityBelowCount
	}
	cp := *event
	r.s.events[event.ID] = &cp
	return nil
}

func (r *fakeEventRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[id]; !ok {
		return apperrors.ErrEventNotFound
	}
	delete(r.s.events, id)
	delete(r.s.registrations, id)
	for key := range r.s.certificates {
		if key[1] == id {
			delete(r.s.certificates, key)
		}
	}
	return nil
}

type fakeRegistrationRepo struct{ s *store }

func (r *fakeRegistrationRepo) Register(_ context.Context, userID, eventID uuid.UUID) (*domain.Registration, domain.SeatUpdate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	event, ok := r.s.events[eventID]
	if !ok {
		return nil, domain.SeatUpdate{}, apperrors.ErrEventNotFound
	}
	regs := r.s.registrations[eventID]
	_, registered := regs[userID]
	if err := event.Admit(len(regs), registered); err != nil {
		return nil, domain.SeatUpdate{}, err
	}
	if regs == nil {
		regs = make(map[uuid.UUID]*domain.Registration)
		r.s.registrations[eventID] = regs
	}
	reg := &domain.Registration{ID: uuid.New(), UserID: userID, EventID: eventID, RegisteredAt: time.Now()}
	regs[userID] = reg
	event.SeatVersion++
	return reg, domain.NewSeatUpdate(eventID, event.Capacity, len(regs), event.SeatVersion), nil
}

func (r *fakeRegistrationRepo) Cancel(_ context.Context, userID, eventID uuid.UUID) (uuid.UUID, domain.SeatUpdate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	event, ok := r.s.events[eventID]
	if !ok {
		return uuid.Nil, domain.SeatUpdate{}, apperrors.ErrEventNotFound
	}
	reg, ok := r.s.registrations[eventID][userID]
	if !ok {
		return uuid.Nil, domain.SeatUpdate{}, apperrors.ErrNotRegistered
	}
	delete(r.s.registrations[eventID], userID)
	event.SeatVersion++
	return reg.ID, domain.NewSeatUpdate(eventID, event.Capacity, len(r.s.registrations[eventID]), event.SeatVersion), nil
}

func (r *fakeRegistrationRepo) IsParticipant(_ context.Context, userID, eventID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.registrations[eventID][userID]
	return ok, nil
}

func (r *fakeRegistrationRepo) Count(_ context.Context, eventID uuid.UUID) (int, error) {
	return r.s.participantCount(eventID), nil
}

func (r *fakeRegistrationRepo) ListParticipants(_ context.Context, eventID uuid.UUID) ([]domain.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Participant, 0)
	for userID, reg := range r.s.registrations[eventID] {
		u := r.s.users[userID]
		out = append(out, domain.Participant{
			UserID: userID, Username: u.Username, FullName: u.FullName(),
			Email: u.Email, Role: u.Role, RegisteredAt: reg.RegisteredAt,
		})
	}
	return out, nil
}

type fakeCertificateRepo struct{ s *store }

func (r *fakeCertificateRepo) GetOrCreate(_ context.Context, userID, eventID uuid.UUID) (*domain.Certificate, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [2]uuid.UUID{userID, eventID}
	if c, ok := r.s.certificates[key]; ok {
		cp := *c
		return &cp, false, nil
	}
	c := &domain.Certificate{ID: uuid.New(), UserID: userID, EventID: eventID, IssuedAt: time.Now().UTC()}
	r.s.certificates[key] = c
	cp := *c
	return &cp, true, nil
}

type fakeStatsRepo struct{ s *store }

func (r *fakeStatsRepo) GetEventStats(_ context.Context, eventID uuid.UUID) (*domain.EventStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[eventID]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	registered := len(r.s.registrations[eventID])
	issued := 0
	for key := range r.s.certificates {
		if key[1] == eventID {
			issued++
		}
	}
	return &domain.EventStats{
		EventID: eventID, Capacity: e.Capacity, Registered: registered,
		Remaining: e.Capacity - registered, CertificatesIssued: issued,
	}, nil
}

type fakeAuditRepo struct{ s *store }

func (r *fakeAuditRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.auditErr != nil {
		return r.s.auditErr
	}
	entry.ID = int64(len(r.s.audit) + 1)
	cp := *entry
	r.s.audit = append(r.s.audit, &cp)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.AuditLog, 0)
	for _, a := range r.s.audit {
		if filter.EntityType != "" && a.EntityType != filter.EntityType {
			continue
		}
		if filter.Action != "" && a.Action != filter.Action {
			continue
		}
		out = append(out, a)
	}
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

type fakeRateLimitRepo struct{ s *store }

func (r *fakeRateLimitRepo) Increment(_ context.Context, key string, _ time.Duration) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.counters[key]++
	return r.s.counters[key], nil
}

func (r *fakeRateLimitRepo) TTL(context.Context, string) (time.Duration, error) {
	return 30 * time.Second, nil
}

type fakeSeatRepo struct{ s *store }

func (r *fakeSeatRepo) Publish(_ context.Context, update domain.SeatUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.seatUpdates = append(r.s.seatUpdates, update)
	return nil
}

func (r *fakeSeatRepo) Subscribe(context.Context, uuid.UUID) (<-chan domain.SeatUpdate, func() error) {
	ch := make(chan domain.SeatUpdate)
	close(ch)
	return ch, func() error { return nil }
}

type fakePublisher struct{ s *store }

func (p *fakePublisher) Publish(_ context.Context, n domain.Notification) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	p.s.notifications = append(p.s.notifications, n)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{BaseURL: "http://localhost:8080"},
		JWT: config.JWTConfig{
			AccessSecret:  "access-secret",
			RefreshSecret: "refresh-secret",
			AccessTTL:     time.Minute,
			RefreshTTL:    time.Hour,
		},
		Certificate: config.CertificateConfig{IssuerName: "Test Issuer", Timezone: "UTC"},
		RateLimit:   config.RateLimitConfig{Requests: 3, Window: time.Minute},
	}
}

func newTestServices(s *store) *Services {
	svc, err := NewServices(s.repositories(), &fakePublisher{s}, testConfig(), logger.Nop())
	if err != nil {
		panic(err)
	}
	return svc
}

func futureDay(days int) time.Time {
	y, m, d := time.Now().UTC().AddDate(0, 0, days).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
