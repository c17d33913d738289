package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/presence"
)

// PresenceHandler exposes the presence registry over HTTP. Presence reads
// are not conversation-scoped and need no membership check.
type PresenceHandler struct {
	registry *presence.Registry
}

// NewPresenceHandler builds a PresenceHandler.
func NewPresenceHandler(registry *presence.Registry) *PresenceHandler {
	return &PresenceHandler{registry: registry}
}

// SetStatus updates the caller's chosen status.
func (h *PresenceHandler) SetStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidQuery(c, err.Error())
		return
	}

	userID := c.GetInt("userID")
	result, err := h.registry.SetStatus(c.Request.Context(), userID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPresence returns any user's presence; users without a record yield
// the offline default.
func (h *PresenceHandler) GetPresence(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		invalidQuery(c, "invalid user id")
		return
	}

	result, err := h.registry.GetPresence(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
