package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"event_management/internal/domain"
	"event_management/internal/middleware"
	"event_management/internal/validator"
	apperrors "event_management/pkg/errors"
	"event_management/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeEventService struct {
	event  *domain.Event
	events []*domain.Event
	export []byte
	err    error
}

func (f *fakeEventService) Create(ctx context.Context, actorID uuid.UUID, req *validator.EventRequest) (*domain.Event, error) {
	return f.event, f.err
}

func (f *fakeEventService) Get(ctx context.Context, viewerID, eventID uuid.UUID) (*domain.Event, error) {
	return f.event, f.err
}

func (f *fakeEventService) List(ctx context.Context, limit, offset int) ([]*domain.Event, error) {
	return f.events, f.err
}

func (f *fakeEventService) Update(ctx context.Context, actorID, eventID uuid.UUID, req *validator.EventRequest) (*domain.Event, error) {
	return f.event, f.err
}

func (f *fakeEventService) Delete(ctx context.Context, actorID, eventID uuid.UUID) error {
	return f.err
}

func (f *fakeEventService) ExportParticipants(ctx context.Context, actorID, eventID uuid.UUID) (*domain.Event, []byte, error) {
	return f.event, f.export, f.err
}

type fakeRegistrationService struct {
	err     error
	actorID uuid.UUID
	mine    []*domain.Event
}

func (f *fakeRegistrationService) Register(ctx context.Context, actorID, eventID uuid.UUID) (*domain.Registration, error) {
	f.actorID = actorID
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Registration{ID: uuid.New(), UserID: actorID, EventID: eventID, RegisteredAt: time.Now()}, nil
}

func (f *fakeRegistrationService) Cancel(ctx context.Context, actorID, eventID uuid.UUID) error {
	f.actorID = actorID
	return f.err
}

func (f *fakeRegistrationService) MyEvents(ctx context.Context, actorID uuid.UUID) ([]*domain.Event, error) {
	return f.mine, nil
}

type fakeCertificateService struct {
	cert *domain.Certificate
	err  error
}

func (f *fakeCertificateService) Issue(ctx context.Context, actorID, eventID, userID uuid.UUID) (*domain.Certificate, []byte, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.cert, []byte("%PDF-1.3 fake"), nil
}

// newRouter wires the error handler and, when userID is non-nil, a stand-in
// for RequireAuth.
func newRouter(userID uuid.UUID) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler(logger.Nop()))
	r.Use(func(c *gin.Context) {
		if userID != uuid.Nil {
			c.Set(middleware.ContextUserID, userID)
		}
		c.Next()
	})
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apperrors.APIError {
	t.Helper()
	var body apperrors.APIError
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return body
}

func TestRegistrationHandlerRegister(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"created", "/events/" + uuid.NewString() + "/register", nil, http.StatusCreated, ""},
		{"capacity reached", "/events/" + uuid.NewString() + "/register", apperrors.ErrCapacityReached, http.StatusBadRequest, "capacity reached"},
		{"already registered", "/events/" + uuid.NewString() + "/register", apperrors.ErrAlreadyRegistered, http.StatusBadRequest, "already registered"},
		{"organizer", "/events/" + uuid.NewString() + "/register", apperrors.ErrOrganizerRegistration, http.StatusForbidden, "organizers cannot self-register"},
		{"missing event", "/events/" + uuid.NewString() + "/register", apperrors.ErrEventNotFound, http.StatusNotFound, "event not found"},
		{"malformed id", "/events/nope/register", nil, http.StatusBadRequest, "invalid id"},
		{"store failure", "/events/" + uuid.NewString() + "/register", errors.New("connection refused"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID := uuid.New()
			svc := &fakeRegistrationService{err: tt.err}
			h := NewRegistrationHandler(svc, logger.Nop())

			r := newRouter(userID)
			r.POST("/events/:id/register", h.Register)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, tt.path, nil))

			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantCode, w.Body.String())
			}
			if tt.wantMsg != "" {
				body := decodeError(t, w)
				if body.Message != tt.wantMsg || body.Code != tt.wantCode {
					t.Errorf("body = %+v", body)
				}
			}
			if tt.wantCode == http.StatusCreated && svc.actorID != userID {
				t.Errorf("actor = %s, want the authenticated user %s", svc.actorID, userID)
			}
		})
	}
}

func TestRegistrationHandlerCancel(t *testing.T) {
	h := NewRegistrationHandler(&fakeRegistrationService{err: apperrors.ErrNotRegistered}, logger.Nop())
	r := newRouter(uuid.New())
	r.DELETE("/events/:id/register", h.Cancel)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/events/"+uuid.NewString()+"/register", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestCertificateHandlerIssue(t *testing.T) {
	cert := &domain.Certificate{ID: uuid.New()}
	h := NewCertificateHandler(&fakeCertificateService{cert: cert}, logger.Nop())
	r := newRouter(uuid.New())
	r.GET("/events/:id/certificate", h.Issue)

	t.Run("pdf", func(t *testing.T) {
		w := httptest.NewRecorder()
		path := "/events/" + uuid.NewString() + "/certificate?user=" + uuid.NewString()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
			t.Errorf("Content-Type = %q", ct)
		}
		if got := w.Header().Get("X-Certificate-ID"); got != cert.ID.String() {
			t.Errorf("X-Certificate-ID = %q, want %s", got, cert.ID)
		}
		if !strings.HasPrefix(w.Body.String(), "%PDF") {
			t.Error("body is not the rendered pdf")
		}
	})

	t.Run("missing user", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events/"+uuid.NewString()+"/certificate", nil))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", w.Code)
		}
	})
}

func TestCertificateHandlerNotRegistered(t *testing.T) {
	h := NewCertificateHandler(&fakeCertificateService{err: apperrors.ErrParticipantNotRegistered}, logger.Nop())
	r := newRouter(uuid.New())
	r.GET("/events/:id/certificate", h.Issue)

	w := httptest.NewRecorder()
	path := "/events/" + uuid.NewString() + "/certificate?user=" + uuid.NewString()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d", w.Code)
	}
	if body := decodeError(t, w); body.Message != "not registered" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestEventHandlerCreateRejectsMalformedJSON(t *testing.T) {
	h := NewEventHandler(&fakeEventService{}, logger.Nop())
	r := newRouter(uuid.New())
	r.POST("/events", h.Create)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/events", strings.NewReader("{")))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestEventHandlerGetRendersDates(t *testing.T) {
	day := time.Date(2030, 3, 14, 0, 0, 0, 0, time.UTC)
	event := &domain.Event{ID: uuid.New(), Title: "Go meetup", StartDate: day, EndDate: day, Capacity: 10, RegisteredCount: 4}
	h := NewEventHandler(&fakeEventService{event: event}, logger.Nop())
	r := newRouter(uuid.Nil)
	r.GET("/events/:id", h.GetByID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events/"+event.ID.String(), nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["start_date"] != "2030-03-14" {
		t.Errorf("start_date = %v", body["start_date"])
	}
	if body["remaining"] != float64(6) {
		t.Errorf("remaining = %v", body["remaining"])
	}
}

func TestEventHandlerExportParticipants(t *testing.T) {
	event := &domain.Event{ID: uuid.New()}
	h := NewEventHandler(&fakeEventService{event: event, export: []byte("xlsx")}, logger.Nop())
	r := newRouter(uuid.New())
	r.GET("/events/:id/participants/export", h.ExportParticipants)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events/"+event.ID.String()+"/participants/export", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, event.ID.String()) {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestEventHandlerDeleteForbidden(t *testing.T) {
	h := NewEventHandler(&fakeEventService{err: apperrors.ErrNotEventOwner}, logger.Nop())
	r := newRouter(uuid.New())
	r.DELETE("/events/:id", h.Delete)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/events/"+uuid.NewString(), nil))

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestHealthHandlerReady(t *testing.T) {
	h := NewHealthHandler(map[string]Pinger{
		"postgres": PingFunc(func(ctx context.Context) error { return nil }),
		"redis":    PingFunc(func(ctx context.Context) error { return errors.New("dial tcp: refused") }),
	})
	r := newRouter(uuid.Nil)
	r.GET("/ready", h.Ready)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Checks["postgres"] != "ok" || body.Checks["redis"] == "ok" {
		t.Errorf("checks = %v", body.Checks)
	}
}
