package handler

import (
	"log/slog"
	"net/http"
	"time"

	"agenda/internal/events"
	"agenda/internal/middleware"
	"agenda/internal/observability/metrics"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// EventsHandler streams contact changes over a websocket
type EventsHandler struct {
	hub            *events.Hub
	allowedOrigins []string
	logger         *slog.Logger
}

func NewEventsHandler(hub *events.Hub, allowedOrigins []string, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{hub: hub, allowedOrigins: allowedOrigins, logger: logger}
}

func (h *EventsHandler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if allowed == "*" || origin == allowed {
					return true
				}
			}
			h.logger.Warn("websocket origin rejected", slog.String("origin", origin))
			return false
		},
	}
}

// Stream upgrades the connection and relays events readable by the caller
// @Router /contacts/events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the error response
		return
	}
	defer conn.Close()

	sub := h.hub.Subscribe(middleware.Requester(c))
	defer sub.Close()
	metrics.SubscriberConnected()
	defer metrics.SubscriberDisconnected()

	log := middleware.Logger(c)
	done := make(chan struct{})
	go h.readPump(conn, done)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case ev, ok := <-sub.C():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "subscriber too slow"))
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				log.Debug("event write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client messages and closes done when the peer goes away.
func (h *EventsHandler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
