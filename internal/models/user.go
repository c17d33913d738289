package models

import (
	"strings"
	"time"
)

// User is a row of the local user table, keyed to the external identity
// provider by ExternalID (the token subject).
type User struct {
	ID         int       `db:"id" json:"id"`
	ExternalID string    `db:"external_id" json:"-"`
	Username   string    `db:"username" json:"username"`
	FirstName  string    `db:"first_name" json:"first_name,omitempty"`
	LastName   string    `db:"last_name" json:"last_name,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// DisplayName returns "First Last" when names are present, falling back to
// the username handle.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
