package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// broadcastInterval is how often connected dashboards get a fresh
// snapshot pushed.
const broadcastInterval = 1 * time.Second

// WebSocketMessage is the envelope pushed to dashboard clients.
type WebSocketMessage struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// ClientConnection represents one connected dashboard client.
type ClientConnection struct {
	ID   string
	Conn *websocket.Conn
	Send chan WebSocketMessage
}

// WebSocketHub fans the public stats snapshot out to every connected
// client once per second. Slow clients miss frames instead of backing
// up the hub: sends into a full client channel are dropped.
type WebSocketHub struct {
	state   *State
	metrics *Metrics

	clients    map[string]*ClientConnection
	broadcast  chan WebSocketMessage
	register   chan *ClientConnection
	unregister chan string
	mu         sync.RWMutex
	done       chan struct{}
}

// NewWebSocketHub wires a hub over the state. Run must be started by
// the caller.
func NewWebSocketHub(state *State, metrics *Metrics) *WebSocketHub {
	return &WebSocketHub{
		state:      state,
		metrics:    metrics,
		clients:    make(map[string]*ClientConnection),
		broadcast:  make(chan WebSocketMessage, 256),
		register:   make(chan *ClientConnection),
		unregister: make(chan string),
		done:       make(chan struct{}),
	}
}

// Run manages the hub's event loop until Stop.
func (h *WebSocketHub) Run() {
	ticker := time.NewTicker(broadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WS] Client connected: %s (total: %d)", client.ID, total)

		case clientID := <-h.unregister:
			h.mu.Lock()
			if client, exists := h.clients[clientID]; exists {
				delete(h.clients, clientID)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WS] Client disconnected: %s (total: %d)", clientID, total)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients {
				select {
				case client.Send <- msg:
				default:
					// Client's send channel is full, skip this message
				}
			}
			h.mu.RUnlock()

		case <-ticker.C:
			if msg, ok := h.snapshotMessage(); ok {
				select {
				case h.broadcast <- msg:
				default:
					// Channel full, skip this broadcast
				}
			}
		}
	}
}

// snapshotMessage builds one stats frame and refreshes the gauges
// while it is at it, so metrics stay current even with no dashboards
// connected.
func (h *WebSocketHub) snapshotMessage() (WebSocketMessage, bool) {
	snap := h.state.BuildSnapshot()
	h.metrics.ObserveSnapshot(snap)

	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("[WS] Error marshaling stats: %v", err)
		return WebSocketMessage{}, false
	}
	return WebSocketMessage{
		Type:      "stats",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}, true
}

// SnapshotMessage returns one stats frame for a freshly connected
// client.
func (h *WebSocketHub) SnapshotMessage() (WebSocketMessage, bool) {
	return h.snapshotMessage()
}

// Register adds a new client to the hub.
func (h *WebSocketHub) Register(client *ClientConnection) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *WebSocketHub) Unregister(clientID string) {
	h.unregister <- clientID
}

// ClientCount reports how many clients are connected.
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop gracefully stops the hub.
func (h *WebSocketHub) Stop() {
	close(h.done)
}
