package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"event_management/internal/domain"
	"event_management/internal/service"
	apperrors "event_management/pkg/errors"
	"event_management/pkg/logger"
)

const (
	ContextUserID  = "user_id"
	ContextRole    = "user_role"
	ContextIsAdmin = "is_admin"
)

// AccessTokenCookie carries the access token for the server-rendered pages.
// Only OptionalAuth reads it; the JSON API stays bearer-only.
const AccessTokenCookie = "access_token"

type AuthMiddleware struct {
	authService service.AuthService
	log         logger.Logger
}

func NewAuthMiddleware(authService service.AuthService, log logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		log:         log,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abort(c, apperrors.New(apperrors.ErrUnauthorized, "authorization header required"))
			return
		}

		user, err := m.authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			abort(c, err)
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present, in the
// Authorization header or the page cookie, and lets anonymous requests
// through otherwise.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
				token, ok = cookie, true
			}
		}
		if ok {
			if user, err := m.authService.ValidateToken(c.Request.Context(), token); err == nil {
				setUser(c, user)
			}
		}
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextIsAdmin) {
			abort(c, apperrors.ErrAdminOnly)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func setUser(c *gin.Context, user *domain.User) {
	c.Set(ContextUserID, user.ID)
	c.Set(ContextRole, user.Role)
	c.Set(ContextIsAdmin, user.IsAdmin)
}

func abort(c *gin.Context, err error) {
	apiErr := apperrors.FromError(err)
	c.AbortWithStatusJSON(apiErr.Code, apiErr)
}
