package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"event_management/internal/service"
	"event_management/pkg/logger"
)

type RegistrationHandler struct {
	registrationService service.RegistrationService
	log                 logger.Logger
}

func NewRegistrationHandler(registrationService service.RegistrationService, log logger.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		registrationService: registrationService,
		log:                 log,
	}
}

func (h *RegistrationHandler) Register(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}

	reg, err := h.registrationService.Register(c.Request.Context(), currentUserID(c), eventID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, reg)
}

func (h *RegistrationHandler) Cancel(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.registrationService.Cancel(c.Request.Context(), currentUserID(c), eventID); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

func (h *RegistrationHandler) MyEvents(c *gin.Context) {
	events, err := h.registrationService.MyEvents(c.Request.Context(), currentUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}
