package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vitpintodas/comem-travel-log-api/internal/metrics"
)

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a Hub. Run must be called before clients connect.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled, then
// closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			slog.Info("websocket hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			metrics.WSConnections.Set(float64(count))
			slog.Debug("websocket client connected", "remote_addr", client.remoteAddr, "clients", count)

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

// Broadcast queues message for every connected client. It never blocks: when
// the queue is full the message is dropped.
func (h *Hub) Broadcast(message Message) {
	select {
	case h.broadcast <- message:
	default:
		slog.Warn("websocket broadcast queue full, message dropped", "type", message.Type)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// attach registers c with the run loop. It reports false once the hub has
// stopped.
func (h *Hub) attach(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// detach unregisters c. It is a no-op once the hub has stopped.
func (h *Hub) detach(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// sendTo queues message for c alone. It reports false when c is no longer
// registered or its buffer is full.
func (h *Hub) sendTo(c *Client, message Message) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.clients[c] {
		return false
	}
	select {
	case c.send <- message:
		metrics.WSMessagesSent.Inc()
		return true
	default:
		return false
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	count := len(h.clients)
	h.mu.Unlock()
	metrics.WSConnections.Set(float64(count))
	slog.Debug("websocket client disconnected", "remote_addr", c.remoteAddr, "clients", count)
}

func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- message:
			metrics.WSMessagesSent.Inc()
		default:
			// Slow consumer: drop it rather than stall everyone else.
			delete(h.clients, c)
			close(c.send)
			metrics.WSDroppedClients.Inc()
			slog.Warn("websocket client dropped, send buffer full", "remote_addr", c.remoteAddr)
		}
	}
	metrics.WSConnections.Set(float64(len(h.clients)))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	metrics.WSConnections.Set(0)
}
