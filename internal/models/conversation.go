package models

import "time"

// Conversation is a private thread between exactly two users.
type Conversation struct {
	ID             int       `db:"id" json:"id"`
	Participant1ID int       `db:"participant1_id" json:"participant1_id"`
	Participant2ID int       `db:"participant2_id" json:"participant2_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// HasParticipant reports whether the user is one of the two participants.
func (c Conversation) HasParticipant(userID int) bool {
	return c.Participant1ID == userID || c.Participant2ID == userID
}

// OtherParticipant returns the counterpart of the given participant.
func (c Conversation) OtherParticipant(userID int) int {
	if c.Participant1ID == userID {
		return c.Participant2ID
	}
	return c.Participant1ID
}

// ConversationSummary provides an API-friendly view of a conversation for a user.
type ConversationSummary struct {
	ConversationID int       `json:"conversation_id"`
	PartnerID      int       `json:"partner_id"`
	CreatedAt      time.Time `json:"created_at"`
}
