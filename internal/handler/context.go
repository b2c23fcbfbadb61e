package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"event_management/internal/middleware"
	apperrors "event_management/pkg/errors"
)

var errInvalidID = apperrors.New(apperrors.ErrBadRequest, "invalid id")

func currentUserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(middleware.ContextUserID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		_ = c.Error(errInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		_ = c.Error(apperrors.New(apperrors.ErrBadRequest, "invalid request body: "+err.Error()))
		return false
	}
	return true
}
