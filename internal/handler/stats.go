package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"event_management/internal/service"
	"event_management/pkg/logger"
)

type StatsHandler struct {
	statsService service.StatsService
	log          logger.Logger
}

func NewStatsHandler(statsService service.StatsService, log logger.Logger) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
		log:          log,
	}
}

func (h *StatsHandler) GetEventStats(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}

	stats, err := h.statsService.GetEventStats(c.Request.Context(), currentUserID(c), eventID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
