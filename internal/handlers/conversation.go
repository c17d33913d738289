package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/access"
	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

// ConversationHandler manages conversation bootstrap and history endpoints.
type ConversationHandler struct {
	guard            *access.Guard
	conversationRepo repositories.ConversationRepository
	messageRepo      repositories.MessageRepository
	reactionRepo     repositories.ReactionRepository
	userRepo         repositories.UserRepository
}

// NewConversationHandler builds a ConversationHandler.
func NewConversationHandler(guard *access.Guard, conversationRepo repositories.ConversationRepository, messageRepo repositories.MessageRepository, reactionRepo repositories.ReactionRepository, userRepo repositories.UserRepository) *ConversationHandler {
	return &ConversationHandler{
		guard:            guard,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		reactionRepo:     reactionRepo,
		userRepo:         userRepo,
	}
}

// StartConversation creates or returns the existing conversation between
// the caller and a partner.
func (h *ConversationHandler) StartConversation(c *gin.Context) {
	var req struct {
		ParticipantID int `json:"participant_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidQuery(c, err.Error())
		return
	}

	userID := c.GetInt("userID")
	if userID == req.ParticipantID {
		invalidQuery(c, "cannot start a conversation with yourself")
		return
	}

	if _, err := h.userRepo.GetUser(c.Request.Context(), req.ParticipantID); err != nil {
		respondError(c, err)
		return
	}

	conv, err := h.conversationRepo.CreateOrGetConversation(c.Request.Context(), userID, req.ParticipantID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversation_id": conv.ID})
}

// ListConversations returns the caller's conversations with partner info.
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	userID := c.GetInt("userID")

	conversations, err := h.conversationRepo.ListConversations(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	partnerIDs := make([]int, 0, len(conversations))
	for _, conv := range conversations {
		partnerIDs = append(partnerIDs, conv.PartnerID)
	}

	users, err := h.userRepo.BulkUsers(c.Request.Context(), partnerIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	nameByID := map[int]string{}
	for _, u := range users {
		nameByID[u.ID] = u.DisplayName()
	}

	type conversationResponse struct {
		ConversationID int       `json:"conversation_id"`
		PartnerID      int       `json:"partner_id"`
		PartnerName    string    `json:"partner_name,omitempty"`
		CreatedAt      time.Time `json:"created_at"`
	}

	responses := make([]conversationResponse, 0, len(conversations))
	for _, conv := range conversations {
		responses = append(responses, conversationResponse{
			ConversationID: conv.ConversationID,
			PartnerID:      conv.PartnerID,
			PartnerName:    nameByID[conv.PartnerID],
			CreatedAt:      conv.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"conversations": responses})
}

// GetMessages returns a conversation's history with reactions attached.
func (h *ConversationHandler) GetMessages(c *gin.Context) {
	conversationID, ok := parseConversationID(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	if _, err := h.guard.VerifyMembership(c.Request.Context(), conversationID, userID); err != nil {
		respondError(c, err)
		return
	}

	msgs, err := h.messageRepo.ListMessages(c.Request.Context(), conversationID)
	if err != nil {
		respondError(c, err)
		return
	}

	withReactions, err := h.attachReactions(c, msgs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": withReactions})
}

func (h *ConversationHandler) attachReactions(c *gin.Context, msgs []models.Message) ([]models.MessageWithReactions, error) {
	ids := make([]int, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	reactions, err := h.reactionRepo.ListForMessages(c.Request.Context(), ids)
	if err != nil {
		return nil, err
	}

	result := make([]models.MessageWithReactions, 0, len(msgs))
	for _, m := range msgs {
		result = append(result, models.MessageWithReactions{Message: m, Reactions: reactions[m.ID]})
	}
	return result, nil
}
