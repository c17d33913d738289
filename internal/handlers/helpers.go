package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"messaging-service/internal/access"
	"messaging-service/internal/presence"
	"messaging-service/internal/repositories"
)

const requestIDContextKey = "request_id"

// respondError maps component sentinel errors onto the wire taxonomy.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, access.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation participant", "kind": "forbidden"})
	case errors.Is(err, repositories.ErrConversationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found", "kind": "not_found"})
	case errors.Is(err, repositories.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "message not found", "kind": "not_found"})
	case errors.Is(err, repositories.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found", "kind": "not_found"})
	case errors.Is(err, repositories.ErrStarNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "starred message not found", "kind": "not_found"})
	case errors.Is(err, repositories.ErrReactionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "reaction not found", "kind": "not_found"})
	case errors.Is(err, repositories.ErrInvalidParent):
		c.JSON(http.StatusBadRequest, gin.H{"error": "parent must be a non-deleted top-level message in this conversation", "kind": "invalid_parent"})
	case errors.Is(err, presence.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown presence status", "kind": "invalid_status"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "kind": "internal"})
	}
}

func invalidQuery(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "kind": "invalid_query"})
}

func parseConversationID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("conversation_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id", "kind": "invalid_query"})
		return 0, false
	}
	return id, true
}

func parseMessageID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id", "kind": "invalid_query"})
		return 0, false
	}
	return id, true
}

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}
