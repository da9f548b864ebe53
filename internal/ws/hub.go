package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/debug-agent/console/internal/protocol"
	"github.com/gorilla/websocket"
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func newClient(conn *websocket.Conn) *client {
	c := &client{
		conn: conn,
		send: make(chan []byte, 64),
	}
	go c.writePump()
	return c
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (c *client) close() {
	close(c.send)
}

// Hub fans WebSocket messages out to every connected console.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]bool
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]bool),
	}
}

// Add registers a freshly upgraded connection and sends it the handshake.
func (h *Hub) Add(conn *websocket.Conn) *client {
	c := newClient(conn)

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	data, _ := encode(protocol.MsgConnected, protocol.ConnectedPayload{
		Message: "Connected to Debug Agent",
	})

	select {
	case c.send <- data:
	default:
		// Client too slow, drop the handshake
	}

	return c
}

func (h *Hub) Remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
}

// Publish broadcasts one enveloped message to every client. Clients whose
// outbound queue is full are disconnected rather than allowed to stall the
// event loop.
func (h *Hub) Publish(typ protocol.MessageType, payload any) {
	data, err := encode(typ, payload)
	if err != nil {
		log.Printf("ws publish marshal error: %v", err)
		return
	}

	// Send while holding the read lock: Remove closes c.send only under the
	// write lock, so no send can race the close.
	h.mu.RLock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		log.Printf("ws client too slow, disconnecting")
		h.Remove(c)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func encode(typ protocol.MessageType, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(protocol.Envelope{Type: typ, Payload: body})
}
