// Package ws exposes the broadcast hub over a websocket endpoint. Each
// connection maps to one hub subscription; the connection's failure or
// slowness affects only that subscription.
package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/surgecast/surgecast/internal/adapters/broadcast"
	"github.com/surgecast/surgecast/pkg/logger"
)

// Connection timing constants.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Handler upgrades HTTP requests and streams snapshots.
type Handler struct {
	hub      *broadcast.Hub
	upgrader websocket.Upgrader
	log      logger.Logger
}

// NewHandler creates a websocket handler over the hub.
func NewHandler(hub *broadcast.Hub) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The feed is read-only and carries no credentials.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: logger.Named("ws"),
	}
}

// HandleLive handles GET /live requests. The client receives the latest
// snapshot on connect and every published snapshot afterwards as JSON text
// messages.
func (h *Handler) HandleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	sub, err := h.hub.Subscribe(r.Context())
	if err != nil {
		_ = conn.Close()
		return
	}

	ctx := context.Background()
	go h.writeLoop(ctx, conn, sub)
	go h.readLoop(ctx, conn, sub)
}

// writeLoop pushes snapshots and pings until the subscription closes.
func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, sub broadcast.Subscription) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case snapshot, ok := <-sub.C:
			if !ok {
				// Hub dropped us or shut down.
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snapshot); err != nil {
				h.log.Debug(ctx, "snapshot write failed",
					logger.String("subscriber_id", sub.ID.String()),
					logger.Error(err),
				)
				_ = h.hub.Unsubscribe(ctx, sub.ID)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = h.hub.Unsubscribe(ctx, sub.ID)
				return
			}
		}
	}
}

// readLoop drains the connection so control frames are processed, and
// releases the subscription when the peer goes away.
func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, sub broadcast.Subscription) {
	defer func() {
		_ = h.hub.Unsubscribe(ctx, sub.ID)
		_ = conn.Close()
	}()

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
