package models

import "time"

// Message types accepted at send time.
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeFile  = "file"
	MessageTypeAudio = "audio"
)

// ValidMessageType reports whether t is one of the known message types.
func ValidMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeFile, MessageTypeAudio:
		return true
	}
	return false
}

// Message represents a conversation message.
type Message struct {
	ID              int        `db:"id" json:"id"`
	ConversationID  int        `db:"conversation_id" json:"conversation_id"`
	SenderID        int        `db:"sender_id" json:"sender_id"`
	Content         string     `db:"content" json:"content"`
	MessageType     string     `db:"message_type" json:"message_type"`
	MediaURL        *string    `db:"media_url" json:"media_url,omitempty"`
	ParentMessageID *int       `db:"parent_message_id" json:"parent_message_id,omitempty"`
	IsRead          bool       `db:"is_read" json:"is_read"`
	ReadAt          *time.Time `db:"read_at" json:"read_at,omitempty"`
	IsPinned        bool       `db:"is_pinned" json:"is_pinned"`
	PinnedAt        *time.Time `db:"pinned_at" json:"pinned_at,omitempty"`
	IsDeleted       bool       `db:"is_deleted" json:"is_deleted"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// MessageWithReactions pairs a message with the reactions attached to it.
type MessageWithReactions struct {
	Message
	Reactions []Reaction `json:"reactions"`
}
