package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"event_management/pkg/errors"
	"event_management/pkg/logger"
)

// ErrorHandler renders the last error a handler attached with c.Error.
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		apiErr := errors.FromError(err)
		if apiErr.Code == http.StatusInternalServerError {
			log.Error("Request failed", "error", err, "method", c.Request.Method, "path", c.FullPath())
		}
		c.JSON(apiErr.Code, apiErr)
	}
}
