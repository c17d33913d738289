package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrPresenceNotFound = errors.New("presence record not found")

// PresenceRepository stores per-user presence rows. Typing state is not
// persisted here; it lives in the presence registry's memory.
type PresenceRepository interface {
	GetPresence(ctx context.Context, userID int) (models.UserPresence, error)
	UpsertStatus(ctx context.Context, userID int, status string) (models.UserPresence, error)
	SetOnline(ctx context.Context, userID int, online bool) (models.UserPresence, error)
}

// PresenceRepo is a sqlx implementation of PresenceRepository.
type PresenceRepo struct {
	db *sqlx.DB
}

// NewPresenceRepo constructs a PresenceRepo.
func NewPresenceRepo(db *sqlx.DB) *PresenceRepo {
	return &PresenceRepo{db: db}
}

// GetPresence fetches the presence row for a user.
func (r *PresenceRepo) GetPresence(ctx context.Context, userID int) (models.UserPresence, error) {
	var presence models.UserPresence
	err := r.db.GetContext(ctx, &presence, `SELECT user_id, is_online, status, last_seen_at FROM user_presence WHERE user_id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserPresence{}, ErrPresenceNotFound
	}
	return presence, err
}

// UpsertStatus sets the user-chosen status, creating the record online if
// it does not exist yet, and refreshes last_seen_at.
func (r *PresenceRepo) UpsertStatus(ctx context.Context, userID int, status string) (models.UserPresence, error) {
	var presence models.UserPresence
	err := r.db.QueryRowxContext(ctx, `INSERT INTO user_presence (user_id, is_online, status, last_seen_at) VALUES ($1, TRUE, $2, NOW())
        ON CONFLICT (user_id) DO UPDATE SET status = EXCLUDED.status, last_seen_at = NOW()
        RETURNING user_id, is_online, status, last_seen_at`, userID, status).StructScan(&presence)
	return presence, err
}

// SetOnline flips the transport-driven online flag. Going offline stamps
// last_seen_at; the chosen status is left untouched either way.
func (r *PresenceRepo) SetOnline(ctx context.Context, userID int, online bool) (models.UserPresence, error) {
	var presence models.UserPresence
	var err error
	if online {
		err = r.db.QueryRowxContext(ctx, `INSERT INTO user_presence (user_id, is_online) VALUES ($1, TRUE)
            ON CONFLICT (user_id) DO UPDATE SET is_online = TRUE
            RETURNING user_id, is_online, status, last_seen_at`, userID).StructScan(&presence)
	} else {
		err = r.db.QueryRowxContext(ctx, `INSERT INTO user_presence (user_id, is_online, last_seen_at) VALUES ($1, FALSE, NOW())
            ON CONFLICT (user_id) DO UPDATE SET is_online = FALSE, last_seen_at = NOW()
            RETURNING user_id, is_online, status, last_seen_at`, userID).StructScan(&presence)
	}
	return presence, err
}
