package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/access"
	"messaging-service/internal/models"
	"messaging-service/internal/notify"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
)

// MessageHandler manages message mutation and query endpoints.
type MessageHandler struct {
	guard        *access.Guard
	messageRepo  repositories.MessageRepository
	reactionRepo repositories.ReactionRepository
	fanout       *notify.Fanout
	audit        *telemetry.AuditEmitter
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(guard *access.Guard, messageRepo repositories.MessageRepository, reactionRepo repositories.ReactionRepository, fanout *notify.Fanout, audit *telemetry.AuditEmitter) *MessageHandler {
	return &MessageHandler{
		guard:        guard,
		messageRepo:  messageRepo,
		reactionRepo: reactionRepo,
		fanout:       fanout,
		audit:        audit,
	}
}

// PostMessage stores a message and notifies the counterpart.
func (h *MessageHandler) PostMessage(c *gin.Context) {
	conversationID, ok := parseConversationID(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	conv, err := h.guard.VerifyMembership(c.Request.Context(), conversationID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	var req struct {
		Content         string  `json:"content"`
		MessageType     string  `json:"message_type"`
		MediaURL        *string `json:"media_url"`
		ParentMessageID *int    `json:"parent_message_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidQuery(c, err.Error())
		return
	}

	if req.MessageType == "" {
		req.MessageType = models.MessageTypeText
	}
	if !models.ValidMessageType(req.MessageType) {
		invalidQuery(c, "unknown message type")
		return
	}
	if req.MessageType == models.MessageTypeText && strings.TrimSpace(req.Content) == "" {
		invalidQuery(c, "content is required for text messages")
		return
	}
	if req.MessageType != models.MessageTypeText && req.MediaURL == nil {
		invalidQuery(c, "media_url is required for media messages")
		return
	}

	msg, err := h.messageRepo.CreateMessage(c.Request.Context(), conversationID, userID, req.Content, req.MessageType, req.MediaURL, req.ParentMessageID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.audit.Emit(c.Request.Context(), "message.sent", conversationID, msg.ID, requestIDFromContext(c), &userID)
	h.fanout.MessageCreated(c.Request.Context(), conv, msg)
	c.JSON(http.StatusCreated, msg)
}

// DeleteMessage soft-deletes a message (sender only). The row stays behind
// as a tombstone for replies and reactions.
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	conversationID, ok := parseConversationID(c)
	if !ok {
		return
	}
	messageID, ok := parseMessageID(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	conv, err := h.guard.VerifyMembership(c.Request.Context(), conversationID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	msg, err := h.messageRepo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		respondError(c, err)
		return
	}
	if msg.ConversationID != conversationID {
		respondError(c, repositories.ErrMessageNotFound)
		return
	}
	if msg.SenderID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the sender can delete a message", "kind": "forbidden"})
		return
	}

	if err := h.messageRepo.SoftDeleteMessage(c.Request.Context(), messageID, userID); err != nil {
		respondError(c, err)
		return
	}

	h.audit.Emit(c.Request.Context(), "message.deleted", conversationID, messageID, requestIDFromContext(c), &userID)
	h.fanout.MessageDeleted(c.Request.Context(), conv, messageID, userID)
	c.Status(http.StatusNoContent)
}

// MarkRead bulk-transitions the counterpart's unread messages to read.
// Repeated calls with nothing unread are a no-op and notify nobody.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	conversationID, ok := parseConversationID(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	conv, err := h.guard.VerifyMembership(c.Request.Context(), conversationID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	marked, err := h.messageRepo.MarkConversationRead(c.Request.Context(), conversationID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	if marked > 0 {
		h.fanout.MessagesRead(c.Request.Context(), conv, userID)
	}
	c.JSON(http.StatusOK, gin.H{"marked_read": marked})
}

// SetPinned pins or unpins a message for both participants.
func (h *MessageHandler) SetPinned(c *gin.Context) {
	conversationID, ok := parseConversationID(c)
	if !ok {
		return
	}
	messageID, ok := parseMessageID(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	conv, err := h.guard.VerifyMembership(c.Request.Context(), conversationID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	var req struct {
		Pinned *bool `json:"pinned" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidQuery(c, err.Error())
		return
	}

	msg, err := h.messageRepo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		respondError(c, err)
		return
	}
	if msg.ConversationID != conversationID || msg.IsDeleted {
		respondError(c, repositories.ErrMessageNotFound)
		return
	}

	if err := h.messageRepo.SetPinned(c.Request.Context(), messageID, *req.Pinned); err != nil {
		respondError(c, err)
		return
	}

	h.fanout.MessagePinned(c.Request.Context(), conv, messageID, *req.Pinned, userID)
	c.Status(http.StatusNoContent)
}

// ListPinned returns the conversation's pinned messages, most recently
// pinned first.
func (h *MessageHandler) ListPinned(c *gin.Context) {
	conversationID, ok := parseConversationID(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	if _, err := h.guard.VerifyMembership(c.Request.Context(), conversationID, userID); err != nil {
		respondError(c, err)
		return
	}

	msgs, err := h.messageRepo.ListPinned(c.Request.Context(), conversationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// ListReplies returns a thread's replies in chronological order, each with
// its reactions. The parent may be deleted; its thread still renders.
func (h *MessageHandler) ListReplies(c *gin.Context) {
	conversationID, ok := parseConversationID(c)
	if !ok {
		return
	}
	messageID, ok := parseMessageID(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	if _, err := h.guard.VerifyMembership(c.Request.Context(), conversationID, userID); err != nil {
		respondError(c, err)
		return
	}

	parent, err := h.messageRepo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		respondError(c, err)
		return
	}
	if parent.ConversationID != conversationID {
		respondError(c, repositories.ErrMessageNotFound)
		return
	}

	replies, err := h.messageRepo.ListReplies(c.Request.Context(), conversationID, messageID)
	if err != nil {
		respondError(c, err)
		return
	}

	ids := make([]int, 0, len(replies))
	for _, m := range replies {
		ids = append(ids, m.ID)
	}
	reactions, err := h.reactionRepo.ListForMessages(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]models.MessageWithReactions, 0, len(replies))
	for _, m := range replies {
		result = append(result, models.MessageWithReactions{Message: m, Reactions: reactions[m.ID]})
	}

	c.JSON(http.StatusOK, gin.H{"replies": result})
}

// Search runs the filtered query over a conversation's history. The query
// text is required; results are capped.
func (h *MessageHandler) Search(c *gin.Context) {
	conversationID, ok := parseConversationID(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	if _, err := h.guard.VerifyMembership(c.Request.Context(), conversationID, userID); err != nil {
		respondError(c, err)
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		invalidQuery(c, "search query is required")
		return
	}

	typeFilter := c.DefaultQuery("type", "all")
	if typeFilter != "all" && !models.ValidMessageType(typeFilter) {
		invalidQuery(c, "unknown type filter")
		return
	}

	senderFilter := c.DefaultQuery("sender", repositories.SenderFilterAll)
	switch senderFilter {
	case repositories.SenderFilterAll, repositories.SenderFilterMe, repositories.SenderFilterThem:
	default:
		invalidQuery(c, "unknown sender filter")
		return
	}

	dateRange := c.DefaultQuery("range", repositories.DateRangeAll)
	switch dateRange {
	case repositories.DateRangeAll, repositories.DateRangeToday, repositories.DateRangeWeek, repositories.DateRangeMonth:
	default:
		invalidQuery(c, "unknown date range filter")
		return
	}

	filter := repositories.SearchFilter{
		Query:     query,
		Type:      typeFilter,
		Sender:    senderFilter,
		DateRange: dateRange,
	}
	msgs, err := h.messageRepo.Search(c.Request.Context(), conversationID, userID, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// SetReaction sets the caller's reaction on a message, replacing any
// previous one.
func (h *MessageHandler) SetReaction(c *gin.Context) {
	conversationID, ok := parseConversationID(c)
	if !ok {
		return
	}
	messageID, ok := parseMessageID(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	conv, err := h.guard.VerifyMembership(c.Request.Context(), conversationID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	var req struct {
		Emoji string `json:"emoji" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidQuery(c, err.Error())
		return
	}

	msg, err := h.messageRepo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		respondError(c, err)
		return
	}
	if msg.ConversationID != conversationID || msg.IsDeleted {
		respondError(c, repositories.ErrMessageNotFound)
		return
	}

	reaction, err := h.reactionRepo.UpsertReaction(c.Request.Context(), messageID, userID, req.Emoji)
	if err != nil {
		respondError(c, err)
		return
	}

	h.fanout.MessageReacted(c.Request.Context(), conv, reaction)
	c.JSON(http.StatusOK, reaction)
}

// RemoveReaction clears the caller's reaction on a message.
func (h *MessageHandler) RemoveReaction(c *gin.Context) {
	conversationID, ok := parseConversationID(c)
	if !ok {
		return
	}
	messageID, ok := parseMessageID(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	if _, err := h.guard.VerifyMembership(c.Request.Context(), conversationID, userID); err != nil {
		respondError(c, err)
		return
	}

	if err := h.reactionRepo.RemoveReaction(c.Request.Context(), messageID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
