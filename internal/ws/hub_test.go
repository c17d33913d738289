package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/models"
)

func TestAddRemoveClientCounts(t *testing.T) {
	hub := NewHub()
	first := new(websocket.Conn)
	second := new(websocket.Conn)

	assert.Equal(t, 1, hub.AddClient(1, first, ConnInfo{ConnID: "a", UserID: 1}))
	assert.Equal(t, 2, hub.AddClient(1, second, ConnInfo{ConnID: "b", UserID: 1}))

	assert.Equal(t, 1, hub.RemoveClient(1, first))
	assert.Equal(t, 0, hub.RemoveClient(1, second))
	assert.Equal(t, 0, hub.RemoveClient(1, second))
}

func TestNotifyWithoutConnections(t *testing.T) {
	hub := NewHub()
	delivered := hub.Notify(99, models.Event{Type: models.EventMessageCreated})
	assert.Equal(t, 0, delivered)
}

func TestNotifyDeliversToEverySession(t *testing.T) {
	hub := NewHub()
	upgrader := websocket.Upgrader{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		hub.AddClient(1, conn, ConnInfo{ConnID: newConnID(), UserID: 1})
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	clientA, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer clientA.Close()
	clientB, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer clientB.Close()

	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients[1]) == 2
	}, time.Second, 10*time.Millisecond)

	delivered := hub.Notify(1, models.Event{Type: models.EventMessageCreated, ConversationID: 5})
	assert.Equal(t, 2, delivered)

	for _, client := range []*websocket.Conn{clientA, clientB} {
		client.SetReadDeadline(time.Now().Add(time.Second))
		_, payload, err := client.ReadMessage()
		require.NoError(t, err)

		var event models.Event
		require.NoError(t, json.Unmarshal(payload, &event))
		assert.Equal(t, models.EventMessageCreated, event.Type)
		assert.Equal(t, 5, event.ConversationID)
	}
}
