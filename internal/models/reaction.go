package models

// Reaction is a single emoji reaction on a message. A user holds at most
// one reaction per message; a new emoji replaces the previous one.
type Reaction struct {
	MessageID int    `db:"message_id" json:"message_id"`
	UserID    int    `db:"user_id" json:"user_id"`
	Emoji     string `db:"emoji" json:"emoji"`
}
