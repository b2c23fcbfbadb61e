package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"event_management/internal/service"
	"event_management/internal/validator"
	"event_management/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type EventHandler struct {
	eventService service.EventService
	log          logger.Logger
}

func NewEventHandler(eventService service.EventService, log logger.Logger) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		log:          log,
	}
}

func (h *EventHandler) Create(c *gin.Context) {
	var req validator.EventRequest
	if !bindJSON(c, &req) {
		return
	}

	event, err := h.eventService.Create(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

func (h *EventHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	events, err := h.eventService.List(c.Request.Context(), limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *EventHandler) GetByID(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}

	event, err := h.eventService.Get(c.Request.Context(), currentUserID(c), eventID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Update(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req validator.EventRequest
	if !bindJSON(c, &req) {
		return
	}

	event, err := h.eventService.Update(c.Request.Context(), currentUserID(c), eventID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Delete(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.eventService.Delete(c.Request.Context(), currentUserID(c), eventID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *EventHandler) ExportParticipants(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}

	event, data, err := h.eventService.ExportParticipants(c.Request.Context(), currentUserID(c), eventID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	filename := fmt.Sprintf("participants-%s.xlsx", event.ID)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
