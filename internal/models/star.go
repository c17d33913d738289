package models

import "time"

// StarredMessage is a private per-user bookmark on a message. It is never
// visible to the other conversation participant.
type StarredMessage struct {
	ID             int       `db:"id" json:"id"`
	UserID         int       `db:"user_id" json:"user_id"`
	MessageID      int       `db:"message_id" json:"message_id"`
	ConversationID int       `db:"conversation_id" json:"conversation_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// StarredMessageDetail joins a star with its message and the people involved.
type StarredMessageDetail struct {
	StarredMessage
	Message            Message `json:"message"`
	SenderName         string  `json:"sender_name"`
	OtherParticipantID int     `json:"other_participant_id"`
}
