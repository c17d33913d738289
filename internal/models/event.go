package models

// Event kinds pushed over websockets and published to the event exchange.
const (
	EventMessageCreated  = "message.created"
	EventMessageDeleted  = "message.deleted"
	EventMessageRead     = "message.read"
	EventMessagePinned   = "message.pinned"
	EventMessageReacted  = "message.reacted"
	EventPresenceChanged = "presence.changed"
	EventTypingChanged   = "typing.changed"
)

// Event describes an already-committed state change. Delivery is
// best-effort; the durable state is correct whether or not it arrives.
type Event struct {
	Type           string        `json:"type"`
	ConversationID int           `json:"conversation_id,omitempty"`
	Message        *Message      `json:"message,omitempty"`
	MessageID      int           `json:"message_id,omitempty"`
	Reaction       *Reaction     `json:"reaction,omitempty"`
	Pinned         *bool         `json:"pinned,omitempty"`
	ReaderID       int           `json:"reader_id,omitempty"`
	Presence       *UserPresence `json:"presence,omitempty"`
	TypingUserID   int           `json:"typing_user_id,omitempty"`
	Typing         *bool         `json:"typing,omitempty"`
}
