// Package realtime pushes aggregate statistics to WebSocket clients.
//
// A Hub owns the set of connected clients and fans messages out to them.
// A Broadcaster recomputes the statistics whenever the API reports that the
// number of users, trips or places may have changed.
package realtime

// Message types sent to clients.
const (
	MessageTypeHello = "hello"
	MessageTypeStats = "stats"
	MessageTypePing  = "ping"
	MessageTypePong  = "pong"
)

// Message is the envelope of every frame exchanged over the socket.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}
