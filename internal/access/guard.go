package access

import (
	"context"
	"errors"

	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

// ErrForbidden means the caller is not a participant of the conversation.
var ErrForbidden = errors.New("caller is not a conversation participant")

// Guard is the single membership chokepoint. Every conversation-scoped
// operation verifies the caller here before touching any state.
type Guard struct {
	conversations repositories.ConversationRepository
}

// NewGuard constructs a Guard.
func NewGuard(conversations repositories.ConversationRepository) *Guard {
	return &Guard{conversations: conversations}
}

// VerifyMembership loads the conversation and checks the caller is one of
// its two participants. Returns repositories.ErrConversationNotFound when
// the conversation is absent and ErrForbidden for non-participants.
func (g *Guard) VerifyMembership(ctx context.Context, conversationID int, callerID int) (models.Conversation, error) {
	conv, err := g.conversations.GetConversation(ctx, conversationID)
	if err != nil {
		return models.Conversation{}, err
	}
	if !conv.HasParticipant(callerID) {
		return models.Conversation{}, ErrForbidden
	}
	return conv, nil
}
