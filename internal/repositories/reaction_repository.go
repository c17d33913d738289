package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrReactionNotFound = errors.New("reaction not found")

// ReactionRepository manages emoji reactions on messages.
type ReactionRepository interface {
	UpsertReaction(ctx context.Context, messageID int, userID int, emoji string) (models.Reaction, error)
	RemoveReaction(ctx context.Context, messageID int, userID int) error
	ListForMessages(ctx context.Context, messageIDs []int) (map[int][]models.Reaction, error)
}

// ReactionRepo is a sqlx implementation of ReactionRepository.
type ReactionRepo struct {
	db *sqlx.DB
}

// NewReactionRepo constructs a ReactionRepo.
func NewReactionRepo(db *sqlx.DB) *ReactionRepo {
	return &ReactionRepo{db: db}
}

// UpsertReaction sets the user's reaction on a message. A second reaction
// from the same user replaces the first.
func (r *ReactionRepo) UpsertReaction(ctx context.Context, messageID int, userID int, emoji string) (models.Reaction, error) {
	var reaction models.Reaction
	err := r.db.QueryRowxContext(ctx, `INSERT INTO reactions (message_id, user_id, emoji) VALUES ($1, $2, $3)
        ON CONFLICT (message_id, user_id) DO UPDATE SET emoji = EXCLUDED.emoji
        RETURNING message_id, user_id, emoji`, messageID, userID, emoji).StructScan(&reaction)
	return reaction, err
}

// RemoveReaction deletes the user's reaction on a message.
func (r *ReactionRepo) RemoveReaction(ctx context.Context, messageID int, userID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reactions WHERE message_id=$1 AND user_id=$2`, messageID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrReactionNotFound
	}
	return nil
}

// ListForMessages loads the reactions for a batch of messages in one query,
// keyed by message id.
func (r *ReactionRepo) ListForMessages(ctx context.Context, messageIDs []int) (map[int][]models.Reaction, error) {
	result := make(map[int][]models.Reaction)
	if len(messageIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`SELECT message_id, user_id, emoji FROM reactions WHERE message_id IN (?)`, messageIDs)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	var reactions []models.Reaction
	if err := r.db.SelectContext(ctx, &reactions, query, args...); err != nil {
		return nil, err
	}
	for _, reaction := range reactions {
		result[reaction.MessageID] = append(result[reaction.MessageID], reaction)
	}
	return result, nil
}
