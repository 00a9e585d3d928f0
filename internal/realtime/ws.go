package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
)

// Handler upgrades requests to WebSocket connections and attaches them to
// the hub.
type Handler struct {
	hub      *Hub
	stats    StatsSource
	timeout  time.Duration
	origins  []string
	upgrader websocket.Upgrader
}

// NewHandler creates a Handler. Browser connections are accepted from the
// given origins only; "*" accepts any origin.
func NewHandler(hub *Hub, stats StatsSource, timeout time.Duration, origins []string) *Handler {
	h := &Handler{hub: hub, stats: stats, timeout: timeout, origins: origins}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
	return h
}

// ServeHTTP sends a hello message followed by the current stats to every new
// client.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		slog.DebugContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	client := newClient(h.hub, conn, r.RemoteAddr)
	if !h.hub.attach(client) {
		_ = conn.Close()
		return
	}
	client.start()
	slog.InfoContext(r.Context(), "websocket client connected", "remote_addr", r.RemoteAddr)

	h.hub.sendTo(client, Message{Type: MessageTypeHello})

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	stats, err := h.stats.Stats(ctx)
	if err != nil {
		slog.WarnContext(ctx, "could not compute realtime stats", "error", err)
		return
	}
	h.hub.sendTo(client, Message{Type: MessageTypeStats, Data: stats})
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Non-browser clients do not send an Origin header.
		return true
	}
	return slices.Contains(h.origins, "*") || slices.Contains(h.origins, origin)
}
