package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/access"
	"messaging-service/internal/repositories"
)

// StarHandler manages private message bookmarks. Stars are per-user state
// and are never pushed to the other participant.
type StarHandler struct {
	guard       *access.Guard
	starRepo    repositories.StarRepository
	messageRepo repositories.MessageRepository
}

// NewStarHandler builds a StarHandler.
func NewStarHandler(guard *access.Guard, starRepo repositories.StarRepository, messageRepo repositories.MessageRepository) *StarHandler {
	return &StarHandler{guard: guard, starRepo: starRepo, messageRepo: messageRepo}
}

// Star bookmarks a message for the caller.
func (h *StarHandler) Star(c *gin.Context) {
	messageID, ok := parseMessageID(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	msg, err := h.messageRepo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		respondError(c, err)
		return
	}
	if msg.IsDeleted {
		respondError(c, repositories.ErrMessageNotFound)
		return
	}
	if _, err := h.guard.VerifyMembership(c.Request.Context(), msg.ConversationID, userID); err != nil {
		respondError(c, err)
		return
	}

	star, err := h.starRepo.Star(c.Request.Context(), userID, messageID, msg.ConversationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, star)
}

// Unstar removes the caller's bookmark on a message.
func (h *StarHandler) Unstar(c *gin.Context) {
	messageID, ok := parseMessageID(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	if err := h.starRepo.Unstar(c.Request.Context(), userID, messageID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListStarred returns the caller's starred messages, optionally scoped to
// one conversation, newest star first.
func (h *StarHandler) ListStarred(c *gin.Context) {
	userID := c.GetInt("userID")

	var conversationID *int
	if raw := c.Query("conversation_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			invalidQuery(c, "invalid conversation id")
			return
		}
		conversationID = &id
	}

	starred, err := h.starRepo.ListStarred(c.Request.Context(), userID, conversationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"starred": starred})
}
