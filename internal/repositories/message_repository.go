package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrInvalidParent   = errors.New("invalid parent message")
)

// SearchLimit is the hard ceiling on search results. Callers needing more
// must narrow their filters.
const SearchLimit = 50

// Sender filter values for Search.
const (
	SenderFilterAll  = "all"
	SenderFilterMe   = "me"
	SenderFilterThem = "them"
)

// Date range filter values for Search.
const (
	DateRangeAll   = "all"
	DateRangeToday = "today"
	DateRangeWeek  = "week"
	DateRangeMonth = "month"
)

// SearchFilter carries the predicates for Search. All predicates are ANDed.
type SearchFilter struct {
	Query     string
	Type      string
	Sender    string
	DateRange string
}

const messageColumns = `id, conversation_id, sender_id, content, message_type, media_url, parent_message_id, is_read, read_at, is_pinned, pinned_at, is_deleted, created_at`

// MessageRepository defines interactions for conversation messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, conversationID int, senderID int, content string, messageType string, mediaURL *string, parentMessageID *int) (models.Message, error)
	GetMessage(ctx context.Context, messageID int) (models.Message, error)
	ListMessages(ctx context.Context, conversationID int) ([]models.Message, error)
	SoftDeleteMessage(ctx context.Context, messageID int, senderID int) error
	MarkConversationRead(ctx context.Context, conversationID int, readerID int) (int64, error)
	SetPinned(ctx context.Context, messageID int, pinned bool) error
	ListPinned(ctx context.Context, conversationID int) ([]models.Message, error)
	ListReplies(ctx context.Context, conversationID int, parentMessageID int) ([]models.Message, error)
	Search(ctx context.Context, conversationID int, callerID int, filter SearchFilter) ([]models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a message. When a parent is given it must exist in
// the same conversation, must not be deleted, and must itself be a
// top-level message; threads are one level deep. Validation and insert run
// in one transaction so no row is left behind on failure.
func (r *MessageRepo) CreateMessage(ctx context.Context, conversationID int, senderID int, content string, messageType string, mediaURL *string, parentMessageID *int) (models.Message, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer tx.Rollback()

	if parentMessageID != nil {
		var parent models.Message
		err := tx.GetContext(ctx, &parent, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, *parentMessageID)
		if errors.Is(err, sql.ErrNoRows) {
			return models.Message{}, ErrInvalidParent
		}
		if err != nil {
			return models.Message{}, err
		}
		if parent.ConversationID != conversationID || parent.IsDeleted || parent.ParentMessageID != nil {
			return models.Message{}, ErrInvalidParent
		}
	}

	var msg models.Message
	err = tx.QueryRowxContext(ctx, `INSERT INTO messages (conversation_id, sender_id, content, message_type, media_url, parent_message_id)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+messageColumns,
		conversationID, senderID, content, messageType, mediaURL, parentMessageID).StructScan(&msg)
	if err != nil {
		return models.Message{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// GetMessage retrieves a single message, deleted or not.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// ListMessages returns the non-deleted history of a conversation in
// chronological order.
func (r *MessageRepo) ListMessages(ctx context.Context, conversationID int) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
        WHERE conversation_id=$1 AND is_deleted = FALSE
        ORDER BY created_at ASC, id ASC`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, conversationID)
	return msgs, err
}

// SoftDeleteMessage flips the deleted flag. The row stays behind so
// replies and reactions pointing at it keep a valid target.
func (r *MessageRepo) SoftDeleteMessage(ctx context.Context, messageID int, senderID int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET is_deleted = TRUE WHERE id=$1 AND sender_id=$2`, messageID, senderID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// MarkConversationRead transitions every unread message from the
// counterpart to read in one statement and reports how many rows changed.
// Calling it with nothing unread is a no-op.
func (r *MessageRepo) MarkConversationRead(ctx context.Context, conversationID int, readerID int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET is_read = TRUE, read_at = NOW()
        WHERE conversation_id=$1 AND sender_id<>$2 AND is_read = FALSE`, conversationID, readerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetPinned pins or unpins a message, stamping or clearing pinned_at.
func (r *MessageRepo) SetPinned(ctx context.Context, messageID int, pinned bool) error {
	var query string
	if pinned {
		query = `UPDATE messages SET is_pinned = TRUE, pinned_at = NOW() WHERE id=$1`
	} else {
		query = `UPDATE messages SET is_pinned = FALSE, pinned_at = NULL WHERE id=$1`
	}
	res, err := r.db.ExecContext(ctx, query, messageID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// ListPinned returns non-deleted pinned messages, most recently pinned first.
func (r *MessageRepo) ListPinned(ctx context.Context, conversationID int) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
        WHERE conversation_id=$1 AND is_pinned = TRUE AND is_deleted = FALSE
        ORDER BY pinned_at DESC`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, conversationID)
	return msgs, err
}

// ListReplies returns the non-deleted replies of a thread in chronological
// order. The parent itself may be deleted; its replies still list.
func (r *MessageRepo) ListReplies(ctx context.Context, conversationID int, parentMessageID int) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
        WHERE conversation_id=$1 AND parent_message_id=$2 AND is_deleted = FALSE
        ORDER BY created_at ASC, id ASC`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, conversationID, parentMessageID)
	return msgs, err
}

// Search runs the ANDed predicate set over a conversation's non-deleted
// messages, newest first, capped at SearchLimit rows.
func (r *MessageRepo) Search(ctx context.Context, conversationID int, callerID int, filter SearchFilter) ([]models.Message, error) {
	where, args := buildSearchConditions(conversationID, callerID, filter, time.Now())
	query := fmt.Sprintf(`SELECT `+messageColumns+` FROM messages WHERE %s ORDER BY created_at DESC, id DESC LIMIT %d`,
		strings.Join(where, " AND "), SearchLimit)
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, args...)
	return msgs, err
}

func buildSearchConditions(conversationID int, callerID int, filter SearchFilter, now time.Time) ([]string, []interface{}) {
	where := []string{"conversation_id=$1", "is_deleted = FALSE"}
	args := []interface{}{conversationID}

	args = append(args, "%"+filter.Query+"%")
	where = append(where, fmt.Sprintf("content ILIKE $%d", len(args)))

	if filter.Type != "" && filter.Type != "all" {
		args = append(args, filter.Type)
		where = append(where, fmt.Sprintf("message_type=$%d", len(args)))
	}

	switch filter.Sender {
	case SenderFilterMe:
		args = append(args, callerID)
		where = append(where, fmt.Sprintf("sender_id=$%d", len(args)))
	case SenderFilterThem:
		args = append(args, callerID)
		where = append(where, fmt.Sprintf("sender_id<>$%d", len(args)))
	}

	if since, ok := dateRangeStart(filter.DateRange, now); ok {
		args = append(args, since)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}

	return where, args
}

// dateRangeStart maps a range name to its lower bound. "today" and "month"
// are calendar-aligned, "week" is a rolling 7x24h window.
func dateRangeStart(dateRange string, now time.Time) (time.Time, bool) {
	switch dateRange {
	case DateRangeToday:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), true
	case DateRangeWeek:
		return now.Add(-7 * 24 * time.Hour), true
	case DateRangeMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), true
	default:
		return time.Time{}, false
	}
}
