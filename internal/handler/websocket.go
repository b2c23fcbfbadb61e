package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"event_management/internal/domain"
	"event_management/internal/repository"
	"event_management/internal/service"
	"event_management/pkg/logger"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	eventService service.EventService
	seats        repository.SeatRepository
	log          logger.Logger
}

func NewWebSocketHandler(eventService service.EventService, seats repository.SeatRepository, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		eventService: eventService,
		seats:        seats,
		log:          log,
	}
}

// HandleSeats streams seat-count changes for one event. The first frame is
// the current count so clients do not wait for the next registration.
// Updates older than the last one sent are dropped.
func (h *WebSocketHandler) HandleSeats(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}

	event, err := h.eventService.Get(c.Request.Context(), currentUserID(c), eventID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, closeSub := h.seats.Subscribe(ctx, eventID)
	defer closeSub()

	go h.readPump(conn, cancel)

	initial := domain.NewSeatUpdate(event.ID, event.Capacity, event.RegisteredCount, event.SeatVersion)
	if err := h.write(conn, initial); err != nil {
		return
	}
	current := initial.Version

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if !update.Supersedes(current) {
				continue
			}
			current = update.Version
			if err := h.write(conn, update); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only exists to process control frames and notice disconnects.
func (h *WebSocketHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("Seat stream closed unexpectedly", "error", err)
			}
			return
		}
	}
}

func (h *WebSocketHandler) write(conn *websocket.Conn, update domain.SeatUpdate) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(update); err != nil {
		h.log.Debug("Failed to write seat update", "error", err)
		return err
	}
	return nil
}
