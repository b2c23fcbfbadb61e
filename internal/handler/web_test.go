package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"event_management/internal/config"
	"event_management/internal/domain"
	"event_management/internal/middleware"
	"event_management/internal/service"
	"event_management/internal/validator"
	apperrors "event_management/pkg/errors"
	"event_management/pkg/logger"
)

type fakeAuthService struct {
	password string
	user     *domain.User
}

func (f *fakeAuthService) Register(ctx context.Context, req *validator.RegisterUserRequest) (*domain.User, error) {
	return nil, nil
}

func (f *fakeAuthService) Login(ctx context.Context, req *validator.LoginRequest) (*service.LoginResponse, error) {
	if req.Username != f.user.Username || req.Password != f.password {
		return nil, apperrors.ErrInvalidCredentials
	}
	return &service.LoginResponse{User: f.user, AccessToken: "access-" + f.user.Username, RefreshToken: "refresh"}, nil
}

func (f *fakeAuthService) RefreshToken(ctx context.Context, refreshToken string) (*service.TokenResponse, error) {
	return nil, nil
}

func (f *fakeAuthService) ValidateToken(ctx context.Context, token string) (*domain.User, error) {
	return nil, apperrors.ErrInvalidToken
}

func (f *fakeAuthService) Logout(ctx context.Context, refreshToken string) error {
	return nil
}

type fakeUserService struct {
	user *domain.User
}

func (f *fakeUserService) GetMe(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return f.user, nil
}

func (f *fakeUserService) UpdateMe(ctx context.Context, userID uuid.UUID, req *validator.UpdateProfileRequest) (*domain.User, error) {
	return f.user, nil
}

func (f *fakeUserService) ChangeRole(ctx context.Context, adminID, userID uuid.UUID, req *validator.ChangeRoleRequest) (*domain.User, error) {
	return f.user, nil
}

type fakeAuditService struct {
	entries []*domain.AuditLog
	filter  domain.AuditFilter
}

func (f *fakeAuditService) Record(ctx context.Context, actor *uuid.UUID, action, entityType, entityID, description string) {
}

func (f *fakeAuditService) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	f.filter = filter
	return f.entries, nil
}

func (f *fakeAuditService) Run(ctx context.Context) {}

type pageFixture struct {
	event        *domain.Event
	user         *domain.User
	events       *fakeEventService
	registration *fakeRegistrationService
	audit        *fakeAuditService
	handler      *WebHandler
}

func newPageFixture() *pageFixture {
	day := time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)
	event := &domain.Event{ID: uuid.New(), Title: "Intro to <Go>", StartDate: day, EndDate: day, Capacity: 5, RegisteredCount: 5}
	user := &domain.User{ID: uuid.New(), Username: "sara", FirstName: "Sara", Email: "sara@example.com", Role: domain.RoleStudent}

	f := &pageFixture{
		event:        event,
		user:         user,
		events:       &fakeEventService{event: event, events: []*domain.Event{event}},
		registration: &fakeRegistrationService{},
		audit:        &fakeAuditService{},
	}
	cfg := &config.Config{
		Server: config.ServerConfig{BaseURL: "http://localhost:8080"},
		JWT:    config.JWTConfig{AccessTTL: 15 * time.Minute},
	}
	f.handler = NewWebHandler(&service.Services{
		Auth:         &fakeAuthService{password: "password123", user: user},
		User:         &fakeUserService{user: user},
		Event:        f.events,
		Registration: f.registration,
		Audit:        f.audit,
		Validator:    validator.New(),
	}, cfg, logger.Nop())
	return f
}

// router serves the pages as viewer. A nil viewer browses anonymously.
func (f *pageFixture) router(viewer *domain.User) *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(Templates())
	r.Use(func(c *gin.Context) {
		if viewer != nil {
			c.Set(middleware.ContextUserID, viewer.ID)
			c.Set(middleware.ContextIsAdmin, viewer.IsAdmin)
		}
		c.Next()
	})
	r.GET("/", f.handler.Index)
	r.GET("/login", f.handler.LoginForm)
	r.POST("/login", f.handler.Login)
	r.POST("/logout", f.handler.Logout)
	r.GET("/events/:id", f.handler.Event)
	r.POST("/events/:id/register", f.handler.Register)
	r.POST("/events/:id/cancel", f.handler.Cancel)
	r.GET("/my-events", f.handler.MyEvents)
	r.GET("/audit-logs", f.handler.AuditLogs)
	return r
}

func serve(r *gin.Engine, method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebHandlerIndex(t *testing.T) {
	f := newPageFixture()
	w := serve(f.router(nil), http.MethodGet, "/", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Intro to &lt;Go&gt;") {
		t.Errorf("title not rendered escaped: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "2030-01-02") {
		t.Error("date not formatted")
	}
	if !strings.Contains(w.Body.String(), `href="/login"`) {
		t.Error("anonymous visitors should be offered the login link")
	}
}

func TestWebHandlerEventBadID(t *testing.T) {
	f := newPageFixture()
	w := serve(f.router(nil), http.MethodGet, "/events/zzz", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestWebHandlerRegisterRequiresLogin(t *testing.T) {
	f := newPageFixture()
	w := serve(f.router(nil), http.MethodPost, "/events/"+f.event.ID.String()+"/register", url.Values{})

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", w.Code)
	}
	want := "/login?next=" + url.QueryEscape("/events/"+f.event.ID.String())
	if loc := w.Header().Get("Location"); loc != want {
		t.Errorf("Location = %q, want %q", loc, want)
	}
}

func TestWebHandlerRegistrationErrorsStayOnPage(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		err      error
		wantCode int
		wantText string
	}{
		{"full event", "register", apperrors.ErrCapacityReached, http.StatusBadRequest, "capacity reached"},
		{"duplicate", "register", apperrors.ErrAlreadyRegistered, http.StatusBadRequest, "already registered"},
		{"organizer", "register", apperrors.ErrOrganizerRegistration, http.StatusForbidden, "organizers cannot self-register"},
		{"cancel without registration", "cancel", apperrors.ErrNotRegistered, http.StatusBadRequest, "not registered for this event"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPageFixture()
			f.registration.err = tt.err

			w := serve(f.router(f.user), http.MethodPost, "/events/"+f.event.ID.String()+"/"+tt.path, url.Values{})

			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			body := w.Body.String()
			if !strings.Contains(body, `role="alert">`+tt.wantText+`</p>`) {
				t.Errorf("error message %q not shown on the form: %s", tt.wantText, body)
			}
			if !strings.Contains(body, "<h1>Intro to &lt;Go&gt;</h1>") {
				t.Error("event page was not re-rendered")
			}
		})
	}
}

func TestWebHandlerRegistrationMissingEvent(t *testing.T) {
	f := newPageFixture()
	f.registration.err = apperrors.ErrEventNotFound

	w := serve(f.router(f.user), http.MethodPost, "/events/"+uuid.NewString()+"/register", url.Values{})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestWebHandlerRegisterAndCancelRedirect(t *testing.T) {
	f := newPageFixture()
	r := f.router(f.user)

	w := serve(r, http.MethodPost, "/events/"+f.event.ID.String()+"/register", url.Values{})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("register status = %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/events/"+f.event.ID.String()+"?notice=registered" {
		t.Errorf("Location = %q", loc)
	}
	if f.registration.actorID != f.user.ID {
		t.Errorf("registered actor = %s, want %s", f.registration.actorID, f.user.ID)
	}

	f.registration.mine = []*domain.Event{f.event}
	w = serve(r, http.MethodGet, "/events/"+f.event.ID.String()+"?notice=registered", nil)
	if !strings.Contains(w.Body.String(), pageNotices["registered"]) {
		t.Error("notice not shown after redirect")
	}
	if !strings.Contains(w.Body.String(), `action="/events/`+f.event.ID.String()+`/cancel"`) {
		t.Error("registered viewer should get the cancel form")
	}

	w = serve(r, http.MethodPost, "/events/"+f.event.ID.String()+"/cancel", url.Values{})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("cancel status = %d", w.Code)
	}
}

func TestWebHandlerLogin(t *testing.T) {
	f := newPageFixture()
	r := f.router(nil)

	t.Run("wrong password", func(t *testing.T) {
		w := serve(r, http.MethodPost, "/login", url.Values{"username": {"sara"}, "password": {"nope"}})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "invalid credentials") {
			t.Error("login error not rendered")
		}
		if len(w.Result().Cookies()) != 0 {
			t.Error("no cookie should be set on failure")
		}
	})

	t.Run("success", func(t *testing.T) {
		next := "/events/" + f.event.ID.String()
		w := serve(r, http.MethodPost, "/login", url.Values{"username": {"sara"}, "password": {"password123"}, "next": {next}})
		if w.Code != http.StatusSeeOther || w.Header().Get("Location") != next {
			t.Fatalf("status = %d Location = %q", w.Code, w.Header().Get("Location"))
		}
		cookies := w.Result().Cookies()
		if len(cookies) != 1 || cookies[0].Name != middleware.AccessTokenCookie || cookies[0].Value != "access-sara" {
			t.Fatalf("cookies = %+v", cookies)
		}
		if !cookies[0].HttpOnly {
			t.Error("session cookie must be HttpOnly")
		}
	})

	t.Run("external next", func(t *testing.T) {
		w := serve(r, http.MethodPost, "/login", url.Values{"username": {"sara"}, "password": {"password123"}, "next": {"//evil.example"}})
		if loc := w.Header().Get("Location"); loc != "/" {
			t.Errorf("Location = %q, want /", loc)
		}
	})
}

func TestWebHandlerMyEvents(t *testing.T) {
	f := newPageFixture()
	f.registration.mine = []*domain.Event{f.event}

	if w := serve(f.router(nil), http.MethodGet, "/my-events", nil); w.Code != http.StatusSeeOther {
		t.Fatalf("anonymous status = %d", w.Code)
	}

	w := serve(f.router(f.user), http.MethodGet, "/my-events", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "sara@example.com") || !strings.Contains(body, "Intro to &lt;Go&gt;") {
		t.Errorf("profile or events missing: %s", body)
	}
}

func TestWebHandlerAuditLogs(t *testing.T) {
	admin := &domain.User{ID: uuid.New(), Role: domain.RoleOrganizer, IsAdmin: true}

	t.Run("non admin", func(t *testing.T) {
		f := newPageFixture()
		w := serve(f.router(f.user), http.MethodGet, "/audit-logs", nil)
		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d", w.Code)
		}
	})

	t.Run("invalid filter", func(t *testing.T) {
		f := newPageFixture()
		w := serve(f.router(admin), http.MethodGet, "/audit-logs?action=EXPLODE", nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), `role="alert"`) {
			t.Error("validation message not shown on the filter form")
		}
	})

	t.Run("filtered list", func(t *testing.T) {
		f := newPageFixture()
		f.audit.entries = []*domain.AuditLog{{
			ID: 1, Action: domain.AuditActionCreate, EntityType: domain.EntityEvent,
			EntityID: f.event.ID.String(), Description: "event created", CreatedAt: time.Now(),
		}}
		w := serve(f.router(admin), http.MethodGet, "/audit-logs?entity_type=Event&action=CREATE", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
		}
		if f.audit.filter.EntityType != domain.EntityEvent || f.audit.filter.Action != domain.AuditActionCreate {
			t.Errorf("filter = %+v", f.audit.filter)
		}
		if !strings.Contains(w.Body.String(), "event created") {
			t.Error("entry not listed")
		}
	})
}
