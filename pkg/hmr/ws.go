package hmr

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// envelope wraps an Event with the channel tag the client filters
// postMessage deliveries by (§4.D step 8).
type envelope struct {
	Event
	Channel string `json:"channel"`
}

// WebSocketBroadcaster forwards Emitter events to every connected browser
// over gorilla/websocket, shaped as the postMessage envelope the HMR
// client script expects.
type WebSocketBroadcaster struct {
	channel  string
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.RWMutex
	clients map[uuid.UUID]*websocket.Conn
}

// NewWebSocketBroadcaster constructs a broadcaster tagging every message
// with channel.
func NewWebSocketBroadcaster(channel string) *WebSocketBroadcaster {
	return &WebSocketBroadcaster{
		channel: channel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:  slog.Default().With("component", "hmr"),
		clients: make(map[uuid.UUID]*websocket.Conn),
	}
}

// HandleUpgrade upgrades req to a websocket connection and keeps it
// registered, under a fresh client id used only for logging, until the
// client disconnects.
func (b *WebSocketBroadcaster) HandleUpgrade(w http.ResponseWriter, req *http.Request) {
	conn, err := b.upgrader.Upgrade(w, req, nil)
	if err != nil {
		b.logger.Warn("hmr upgrade failed", "error", err)
		return
	}

	id := uuid.New()
	b.mu.Lock()
	b.clients[id] = conn
	b.mu.Unlock()
	b.logger.Debug("hmr client connected", "client", id)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	b.mu.Lock()
	delete(b.clients, id)
	b.mu.Unlock()
	conn.Close()
	b.logger.Debug("hmr client disconnected", "client", id)
}

// Deliver is an Emitter subscriber: call Emitter.Subscribe(b.Deliver) to
// wire this broadcaster to a Notifier's event stream.
func (b *WebSocketBroadcaster) Deliver(evt Event) {
	data, err := json.Marshal(envelope{Event: evt, Channel: b.channel})
	if err != nil {
		return
	}

	b.mu.RLock()
	conns := make(map[uuid.UUID]*websocket.Conn, len(b.clients))
	for id, c := range b.clients {
		conns[id] = c
	}
	b.mu.RUnlock()

	for id, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			b.mu.Lock()
			delete(b.clients, id)
			b.mu.Unlock()
			c.Close()
		}
	}
}

// ClientCount returns the number of currently connected clients.
func (b *WebSocketBroadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Close disconnects every client.
func (b *WebSocketBroadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, c := range b.clients {
		c.Close()
		delete(b.clients, id)
	}
}
