package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrStarNotFound = errors.New("starred message not found")

// StarRepository manages private per-user message bookmarks.
type StarRepository interface {
	Star(ctx context.Context, userID int, messageID int, conversationID int) (models.StarredMessage, error)
	Unstar(ctx context.Context, userID int, messageID int) error
	ListStarred(ctx context.Context, userID int, conversationID *int) ([]models.StarredMessageDetail, error)
}

// StarRepo is a sqlx implementation of StarRepository.
type StarRepo struct {
	db *sqlx.DB
}

// NewStarRepo constructs a StarRepo.
func NewStarRepo(db *sqlx.DB) *StarRepo {
	return &StarRepo{db: db}
}

// Star bookmarks a message for the user. Starring the same message twice
// keeps the original entry.
func (r *StarRepo) Star(ctx context.Context, userID int, messageID int, conversationID int) (models.StarredMessage, error) {
	var star models.StarredMessage
	err := r.db.QueryRowxContext(ctx, `INSERT INTO starred_messages (user_id, message_id, conversation_id) VALUES ($1, $2, $3)
        ON CONFLICT (user_id, message_id) DO NOTHING
        RETURNING id, user_id, message_id, conversation_id, created_at`, userID, messageID, conversationID).StructScan(&star)
	if errors.Is(err, sql.ErrNoRows) {
		// Already starred; return the existing entry.
		err = r.db.GetContext(ctx, &star, `SELECT id, user_id, message_id, conversation_id, created_at
            FROM starred_messages WHERE user_id=$1 AND message_id=$2`, userID, messageID)
	}
	return star, err
}

// Unstar removes the user's bookmark on a message.
func (r *StarRepo) Unstar(ctx context.Context, userID int, messageID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM starred_messages WHERE user_id=$1 AND message_id=$2`, userID, messageID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrStarNotFound
	}
	return nil
}

// ListStarred returns the user's stars, optionally scoped to one
// conversation, newest star first. Each entry carries the message, its
// sender's display data and the conversation counterpart.
func (r *StarRepo) ListStarred(ctx context.Context, userID int, conversationID *int) ([]models.StarredMessageDetail, error) {
	query := `SELECT s.id, s.user_id, s.message_id, s.conversation_id, s.created_at,
            m.id, m.conversation_id, m.sender_id, m.content, m.message_type, m.media_url, m.parent_message_id,
            m.is_read, m.read_at, m.is_pinned, m.pinned_at, m.is_deleted, m.created_at,
            u.username, u.first_name, u.last_name,
            CASE WHEN c.participant1_id = s.user_id THEN c.participant2_id ELSE c.participant1_id END
        FROM starred_messages s
        JOIN messages m ON m.id = s.message_id
        JOIN conversations c ON c.id = s.conversation_id
        JOIN users u ON u.id = m.sender_id
        WHERE s.user_id=$1 AND m.is_deleted = FALSE`
	args := []interface{}{userID}
	if conversationID != nil {
		query += ` AND s.conversation_id=$2`
		args = append(args, *conversationID)
	}
	query += ` ORDER BY s.created_at DESC`

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.StarredMessageDetail
	for rows.Next() {
		var detail models.StarredMessageDetail
		var sender models.User
		if err := rows.Scan(
			&detail.ID, &detail.UserID, &detail.MessageID, &detail.ConversationID, &detail.CreatedAt,
			&detail.Message.ID, &detail.Message.ConversationID, &detail.Message.SenderID, &detail.Message.Content,
			&detail.Message.MessageType, &detail.Message.MediaURL, &detail.Message.ParentMessageID,
			&detail.Message.IsRead, &detail.Message.ReadAt, &detail.Message.IsPinned, &detail.Message.PinnedAt,
			&detail.Message.IsDeleted, &detail.Message.CreatedAt,
			&sender.Username, &sender.FirstName, &sender.LastName,
			&detail.OtherParticipantID,
		); err != nil {
			return nil, err
		}
		detail.SenderName = sender.DisplayName()
		result = append(result, detail)
	}
	return result, rows.Err()
}
