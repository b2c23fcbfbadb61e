package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"event_management/internal/domain"
	"event_management/internal/service"
	"event_management/internal/validator"
	apperrors "event_management/pkg/errors"
	"event_management/pkg/logger"
)

type AuditHandler struct {
	auditService service.AuditService
	validator    *validator.Validator
	log          logger.Logger
}

func NewAuditHandler(auditService service.AuditService, v *validator.Validator, log logger.Logger) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		validator:    v,
		log:          log,
	}
}

func (h *AuditHandler) List(c *gin.Context) {
	var q validator.AuditLogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(apperrors.New(apperrors.ErrBadRequest, "invalid query: "+err.Error()))
		return
	}
	if err := h.validator.Validate(&q); err != nil {
		_ = c.Error(err)
		return
	}

	entries, err := h.auditService.List(c.Request.Context(), domain.AuditFilter{
		EntityType: q.EntityType,
		Action:     q.Action,
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
