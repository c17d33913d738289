package repositories

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository abstracts conversation persistence.
type ConversationRepository interface {
	CreateOrGetConversation(ctx context.Context, userID int, partnerID int) (models.Conversation, error)
	GetConversation(ctx context.Context, conversationID int) (models.Conversation, error)
	ListConversations(ctx context.Context, userID int) ([]models.ConversationSummary, error)
	ListCounterparts(ctx context.Context, userID int) ([]int, error)
}

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// CreateOrGetConversation creates a conversation between two users if one
// does not already exist for the pair. Participants are stored in sorted
// order so the pair uniqueness constraint holds regardless of who starts.
func (r *ConversationRepo) CreateOrGetConversation(ctx context.Context, userID int, partnerID int) (models.Conversation, error) {
	if userID == partnerID {
		return models.Conversation{}, errors.New("cannot start conversation with self")
	}
	pair := []int{userID, partnerID}
	sort.Ints(pair)
	p1, p2 := pair[0], pair[1]

	var conv models.Conversation
	query := `SELECT id, participant1_id, participant2_id, created_at FROM conversations WHERE participant1_id=$1 AND participant2_id=$2`
	if err := r.db.GetContext(ctx, &conv, query, p1, p2); err != nil {
		if err != sql.ErrNoRows {
			return models.Conversation{}, err
		}
		if err := r.db.QueryRowxContext(ctx, `INSERT INTO conversations (participant1_id, participant2_id) VALUES ($1, $2) RETURNING id, participant1_id, participant2_id, created_at`, p1, p2).
			Scan(&conv.ID, &conv.Participant1ID, &conv.Participant2ID, &conv.CreatedAt); err != nil {
			return models.Conversation{}, err
		}
	}
	return conv, nil
}

// GetConversation fetches a conversation by id.
func (r *ConversationRepo) GetConversation(ctx context.Context, conversationID int) (models.Conversation, error) {
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, `SELECT id, participant1_id, participant2_id, created_at FROM conversations WHERE id=$1`, conversationID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrConversationNotFound
	}
	return conv, err
}

// ListConversations returns the user's conversations, newest first.
func (r *ConversationRepo) ListConversations(ctx context.Context, userID int) ([]models.ConversationSummary, error) {
	query := `SELECT id, participant1_id, participant2_id, created_at FROM conversations
        WHERE participant1_id=$1 OR participant2_id=$1
        ORDER BY created_at DESC`
	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.ConversationSummary
	for rows.Next() {
		var conv models.Conversation
		if err := rows.StructScan(&conv); err != nil {
			return nil, err
		}
		result = append(result, models.ConversationSummary{
			ConversationID: conv.ID,
			PartnerID:      conv.OtherParticipant(userID),
			CreatedAt:      conv.CreatedAt,
		})
	}
	return result, rows.Err()
}

// ListCounterparts returns the ids of every user sharing a conversation
// with the given user. Used to resolve the audience of presence changes.
func (r *ConversationRepo) ListCounterparts(ctx context.Context, userID int) ([]int, error) {
	query := `SELECT CASE WHEN participant1_id=$1 THEN participant2_id ELSE participant1_id END
        FROM conversations WHERE participant1_id=$1 OR participant2_id=$1`
	var ids []int
	err := r.db.SelectContext(ctx, &ids, query, userID)
	return ids, err
}
