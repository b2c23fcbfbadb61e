package handler

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"
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

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded pages. Register the result with
// gin.Engine.SetHTMLTemplate.
func Templates() *template.Template {
	funcs := template.FuncMap{
		"date":     func(t time.Time) string { return t.Format(domain.DateLayout) },
		"datetime": func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04 UTC") },
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

var pageNotices = map[string]string{
	"registered": "You are registered for this event.",
	"cancelled":  "Your registration was cancelled.",
}

type WebHandler struct {
	authService         service.AuthService
	userService         service.UserService
	eventService        service.EventService
	registrationService service.RegistrationService
	auditService        service.AuditService
	validator           *validator.Validator
	cookieTTL           time.Duration
	secureCookie        bool
	log                 logger.Logger
}

func NewWebHandler(services *service.Services, cfg *config.Config, log logger.Logger) *WebHandler {
	return &WebHandler{
		authService:         services.Auth,
		userService:         services.User,
		eventService:        services.Event,
		registrationService: services.Registration,
		auditService:        services.Audit,
		validator:           services.Validator,
		cookieTTL:           cfg.JWT.AccessTTL,
		secureCookie:        strings.HasPrefix(cfg.Server.BaseURL, "https://"),
		log:                 log,
	}
}

// page adds the fields every template reads.
func page(c *gin.Context, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	_, loggedIn := c.Get(middleware.ContextUserID)
	data["LoggedIn"] = loggedIn
	data["IsAdmin"] = c.GetBool(middleware.ContextIsAdmin)
	return data
}

func (h *WebHandler) Index(c *gin.Context) {
	events, err := h.eventService.List(c.Request.Context(), 0, 0)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.HTML(http.StatusOK, "index.html", page(c, gin.H{"Events": events}))
}

func (h *WebHandler) Event(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.renderError(c, errInvalidID)
		return
	}

	h.renderEvent(c, eventID, http.StatusOK, pageNotices[c.Query("notice")], "")
}

func (h *WebHandler) Register(c *gin.Context) {
	h.changeRegistration(c, "registered", func(ctx context.Context, actorID, eventID uuid.UUID) error {
		_, err := h.registrationService.Register(ctx, actorID, eventID)
		return err
	})
}

func (h *WebHandler) Cancel(c *gin.Context) {
	h.changeRegistration(c, "cancelled", h.registrationService.Cancel)
}

// changeRegistration redirects back to the event on success. Rule failures
// such as a full event re-render the page with the message above the form.
func (h *WebHandler) changeRegistration(c *gin.Context, notice string, change func(ctx context.Context, actorID, eventID uuid.UUID) error) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.renderError(c, errInvalidID)
		return
	}
	actorID, ok := h.requireLogin(c)
	if !ok {
		return
	}

	if err := change(c.Request.Context(), actorID, eventID); err != nil {
		apiErr := apperrors.FromError(err)
		if apiErr.Code == http.StatusInternalServerError || apperrors.Is(err, apperrors.ErrNotFound) {
			h.renderError(c, err)
			return
		}
		h.renderEvent(c, eventID, apiErr.Code, "", apiErr.Message)
		return
	}

	c.Redirect(http.StatusSeeOther, "/events/"+eventID.String()+"?notice="+notice)
}

func (h *WebHandler) renderEvent(c *gin.Context, eventID uuid.UUID, status int, notice, formError string) {
	ctx := c.Request.Context()
	event, err := h.eventService.Get(ctx, currentUserID(c), eventID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	registered := false
	if viewer := currentUserID(c); viewer != uuid.Nil {
		mine, err := h.registrationService.MyEvents(ctx, viewer)
		if err != nil {
			h.renderError(c, err)
			return
		}
		for _, e := range mine {
			if e.ID == eventID {
				registered = true
				break
			}
		}
	}

	c.HTML(status, "event.html", page(c, gin.H{
		"Event":      event,
		"Registered": registered,
		"Notice":     notice,
		"Error":      formError,
	}))
}

func (h *WebHandler) MyEvents(c *gin.Context) {
	actorID, ok := h.requireLogin(c)
	if !ok {
		return
	}

	user, err := h.userService.GetMe(c.Request.Context(), actorID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	events, err := h.registrationService.MyEvents(c.Request.Context(), actorID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.HTML(http.StatusOK, "my_events.html", page(c, gin.H{"User": user, "Events": events}))
}

// AuditLogs lists audit entries for administrators. Filter values that fail
// validation are reported on the form and the list is left empty.
func (h *WebHandler) AuditLogs(c *gin.Context) {
	if _, ok := h.requireLogin(c); !ok {
		return
	}
	if !c.GetBool(middleware.ContextIsAdmin) {
		h.renderError(c, apperrors.ErrAdminOnly)
		return
	}

	var q validator.AuditLogQuery
	data := gin.H{"Query": &q}
	if err := c.ShouldBindQuery(&q); err != nil {
		data["Error"] = "invalid filter: " + err.Error()
		c.HTML(http.StatusBadRequest, "audit_logs.html", page(c, data))
		return
	}
	if err := h.validator.Validate(&q); err != nil {
		data["Error"] = err.Error()
		c.HTML(http.StatusBadRequest, "audit_logs.html", page(c, data))
		return
	}

	entries, err := h.auditService.List(c.Request.Context(), domain.AuditFilter{
		EntityType: q.EntityType,
		Action:     q.Action,
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}

	data["Entries"] = entries
	c.HTML(http.StatusOK, "audit_logs.html", page(c, data))
}

func (h *WebHandler) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", page(c, gin.H{"Next": safeNext(c.Query("next"))}))
}

// Login stores the access token in an HttpOnly cookie for the pages.
func (h *WebHandler) Login(c *gin.Context) {
	var req validator.LoginRequest
	_ = c.ShouldBind(&req)
	next := safeNext(c.PostForm("next"))

	response, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		apiErr := apperrors.FromError(err)
		if apiErr.Code == http.StatusInternalServerError {
			h.renderError(c, err)
			return
		}
		c.HTML(apiErr.Code, "login.html", page(c, gin.H{
			"Next":     next,
			"Username": req.Username,
			"Error":    apiErr.Message,
		}))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, response.AccessToken, int(h.cookieTTL.Seconds()), "/", "", h.secureCookie, true)
	c.Redirect(http.StatusSeeOther, next)
}

func (h *WebHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", h.secureCookie, true)
	c.Redirect(http.StatusSeeOther, "/")
}

// requireLogin redirects anonymous visitors to the login page.
func (h *WebHandler) requireLogin(c *gin.Context) (uuid.UUID, bool) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		next := c.Request.URL.Path
		if c.Request.Method != http.MethodGet {
			next = strings.TrimSuffix(strings.TrimSuffix(next, "/register"), "/cancel")
		}
		c.Redirect(http.StatusSeeOther, "/login?next="+url.QueryEscape(next))
		return uuid.Nil, false
	}
	return userID, true
}

// safeNext only allows local paths as a post-login destination.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	return next
}

func (h *WebHandler) renderError(c *gin.Context, err error) {
	apiErr := apperrors.FromError(err)
	if apiErr.Code == http.StatusInternalServerError {
		h.log.Error("Failed to render page", "error", err, "path", c.FullPath())
	}
	c.HTML(apiErr.Code, "error.html", page(c, gin.H{"Code": apiErr.Code, "Message": apiErr.Message}))
}
