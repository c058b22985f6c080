package handlers

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/homehub-dev/homehub/internal/services"
)

// WebSocket streams hub events for the authenticated user until the client
// goes away.
func (h *Handler) WebSocket(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(h.origins, origin)
		},
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	subscriber := services.NewWebSocketSubscriber(conn)
	unsubscribe := h.events.Subscribe(userID, subscriber)

	defer func() {
		unsubscribe()
		_ = subscriber.Close()
		h.logger.Debug("websocket connection closed", slog.String("user_id", userID))
	}()

	conn.SetReadLimit(services.MaxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(services.PongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(services.PongWait))
	})

	err = subscriber.WriteJSON(map[string]string{
		"type":    "connected",
		"message": "WebSocket connection established",
	})

	if err != nil {
		h.logger.Warn("failed to send welcome message", slog.Any("error", err))
		return
	}

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(services.PingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := subscriber.Ping(); err != nil {
					return
				}
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", slog.String("user_id", userID), slog.Any("error", err))
			}
			return
		}
	}
}
