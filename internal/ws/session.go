package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"messaging-service/internal/models"
	"messaging-service/internal/observability"
	"messaging-service/internal/rabbitmq"
)

// TokenAuthenticator resolves a bearer token to a user.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (models.User, error)
}

// PresenceDriver receives the transport's connect/disconnect/typing signals.
type PresenceDriver interface {
	Connected(ctx context.Context, userID int) error
	Disconnected(ctx context.Context, userID int) error
	SetTyping(ctx context.Context, userID int, conversationID *int) error
}

// SessionHandler upgrades authenticated clients onto the hub and feeds
// their lifecycle into the presence registry.
type SessionHandler struct {
	hub       *Hub
	auth      TokenAuthenticator
	presence  PresenceDriver
	publisher rabbitmq.Publisher
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(hub *Hub, auth TokenAuthenticator, presence PresenceDriver, publisher rabbitmq.Publisher) *SessionHandler {
	return &SessionHandler{hub: hub, auth: auth, presence: presence, publisher: publisher}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientFrame is what connected clients may send upstream. Typing is the
// only inbound state change carried over the socket.
type clientFrame struct {
	Type           string `json:"type"`
	ConversationID *int   `json:"conversation_id"`
}

// Handle upgrades the connection and registers the client.
func (h *SessionHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("messaging-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token != "" {
		// Strip the bearer prefix; query tokens arrive bare.
		if len(token) > 7 {
			token = token[7:]
		}
	} else {
		token = c.Query("token")
	}

	user, err := h.auth.Authenticate(ctx, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "kind": "unauthenticated"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      user.ID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
	h.hub.AddClient(user.ID, conn, info)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	h.publishSessionEvent(ctx, "ws_connect", info, 0, "")

	if err := h.presence.Connected(ctx, user.ID); err != nil {
		log.Printf("presence connect for user %d: %v", user.ID, err)
	}

	go h.readLoop(conn, info)
}

func (h *SessionHandler) readLoop(conn *websocket.Conn, info ConnInfo) {
	var closeReason string
	defer func() {
		remaining := h.hub.RemoveClient(info.UserID, conn)
		conn.Close()

		ctx := context.Background()
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		h.publishSessionEvent(ctx, "ws_disconnect", info, time.Since(info.ConnectedAt).Milliseconds(), closeReason)

		// Only the last session going away takes the user offline.
		if remaining == 0 {
			if err := h.presence.Disconnected(ctx, info.UserID); err != nil {
				log.Printf("presence disconnect for user %d: %v", info.UserID, err)
			}
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
				h.publishSessionEvent(context.Background(), "ws_error", info, time.Since(info.ConnectedAt).Milliseconds(), closeReason)
			}
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			continue
		}
		if frame.Type == "typing" {
			if err := h.presence.SetTyping(context.Background(), info.UserID, frame.ConversationID); err != nil {
				log.Printf("typing update for user %d: %v", info.UserID, err)
			}
		}
	}
}

func (h *SessionHandler) publishSessionEvent(ctx context.Context, event string, info ConnInfo, durationMS int64, reason string) {
	if h.publisher == nil {
		return
	}
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": durationMS,
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
	envelope := map[string]interface{}{
		"event_type": "ws_events",
		"event_name": event,
		"payload":    payload,
	}
	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	if err := h.publisher.Publish(ctx, "ws_events.sessions", envelope, headers); err != nil {
		log.Printf("ws event publish failed: %v", err)
	}
}
