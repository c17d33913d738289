package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"messaging-service/internal/models"
)

// Hub maintains the active websocket connections per user. A user may hold
// several sessions at once; every one of them receives each push.
type Hub struct {
	clients map[int]map[*websocket.Conn]ConnInfo
	mu      sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[int]map[*websocket.Conn]ConnInfo),
	}
}

// AddClient registers a websocket connection for a user and reports how
// many connections the user now holds.
func (h *Hub) AddClient(userID int, conn *websocket.Conn, info ConnInfo) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID]; !ok {
		h.clients[userID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.clients[userID][conn] = info
	return len(h.clients[userID])
}

// RemoveClient removes a connection and reports how many connections the
// user still holds.
func (h *Hub) RemoveClient(userID int, conn *websocket.Conn) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[userID]
	if !ok {
		return 0
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(h.clients, userID)
		return 0
	}
	return len(conns)
}

// Notify pushes an event to every connection the user currently holds and
// reports how many sessions received it. Zero is not an error; the durable
// state the event describes is already committed.
func (h *Hub) Notify(userID int, event models.Event) int {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients[userID]))
	for conn := range h.clients[userID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	payload, _ := json.Marshal(event)
	delivered := 0
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.RemoveClient(userID, conn)
			continue
		}
		delivered++
	}
	return delivered
}
