package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"botstats/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The feed is public and read-only; origins are not restricted.
		return true
	},
}

// WebSocketController upgrades dashboard clients onto the live feed.
type WebSocketController struct {
	Hub *services.WebSocketHub
}

// HandleWebSocket handles incoming WebSocket connections.
func (wc *WebSocketController) HandleWebSocket(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &services.ClientConnection{
		ID:   uuid.NewString(),
		Conn: ws,
		Send: make(chan services.WebSocketMessage, 256),
	}

	// Queue an immediate frame so the dashboard renders without
	// waiting out the first broadcast interval.
	if msg, ok := wc.Hub.SnapshotMessage(); ok {
		client.Send <- msg
	}
	wc.Hub.Register(client)

	go readPump(client, wc.Hub)
	go writePump(client)
}

// readPump drains client messages. The feed is one-way except for
// ping, which gets a pong so naive clients can keep the connection
// warm.
func readPump(client *services.ClientConnection, hub *services.WebSocketHub) {
	defer func() {
		hub.Unregister(client.ID)
		client.Conn.Close()
	}()

	client.Conn.SetPongHandler(func(string) error {
		return nil
	})

	for {
		var msg services.WebSocketMessage
		err := client.Conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] WebSocket error: %v", err)
			}
			return
		}

		switch msg.Type {
		case "ping":
			select {
			case client.Send <- services.WebSocketMessage{Type: "pong"}:
			default:
				return
			}

		default:
			// Anything else from the client is ignored.
		}
	}
}

// writePump writes messages to the WebSocket client.
func writePump(client *services.ClientConnection) {
	defer client.Conn.Close()

	for msg := range client.Send {
		if err := client.Conn.WriteJSON(msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Write error: %v", err)
			}
			return
		}
	}
	// Send channel closed by the hub on unregister.
	client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
