package models

import "time"

// Presence statuses a user can choose. Independent from the transport-driven
// online flag.
const (
	StatusAvailable = "available"
	StatusBusy      = "busy"
	StatusAway      = "away"
	StatusInvisible = "invisible"
)

// ValidStatus reports whether s is one of the known presence statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusAvailable, StatusBusy, StatusAway, StatusInvisible:
		return true
	}
	return false
}

// UserPresence is the per-user ephemeral state record. TypingIn is held in
// memory only and may be lost on restart.
type UserPresence struct {
	UserID     int        `db:"user_id" json:"user_id"`
	IsOnline   bool       `db:"is_online" json:"is_online"`
	Status     string     `db:"status" json:"status"`
	LastSeenAt *time.Time `db:"last_seen_at" json:"last_seen_at,omitempty"`
	TypingIn   *int       `json:"typing_in,omitempty"`
}

// DefaultPresence is the presence reported for users without a record.
func DefaultPresence(userID int) UserPresence {
	return UserPresence{UserID: userID, IsOnline: false, Status: StatusAvailable}
}
