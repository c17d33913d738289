package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/access"
	"messaging-service/internal/mocks"
	"messaging-service/internal/models"
)

func setupConversationRouter(handler *ConversationHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.POST("/conversations", handler.StartConversation)
	r.GET("/conversations", handler.ListConversations)
	r.GET("/conversations/:conversation_id/messages", handler.GetMessages)
	return r
}

func newConversationHandler(convRepo *mocks.ConversationRepositoryMock, messageRepo *mocks.MessageRepositoryMock, reactionRepo *mocks.ReactionRepositoryMock, userRepo *mocks.UserRepositoryMock) *ConversationHandler {
	return NewConversationHandler(access.NewGuard(convRepo), convRepo, messageRepo, reactionRepo, userRepo)
}

func TestStartConversationSuccess(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := newConversationHandler(convRepo, nil, nil, userRepo)
	router := setupConversationRouter(handler)

	userRepo.On("GetUser", mock.Anything, 2).Return(models.User{ID: 2, Username: "mentor"}, nil).Once()
	convRepo.On("CreateOrGetConversation", mock.Anything, 1, 2).Return(models.Conversation{ID: 10}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/conversations", bytes.NewBufferString(`{"participant_id":2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	convRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestStartConversationWithSelf(t *testing.T) {
	handler := newConversationHandler(new(mocks.ConversationRepositoryMock), nil, nil, new(mocks.UserRepositoryMock))
	router := setupConversationRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/conversations", bytes.NewBufferString(`{"participant_id":1}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListConversationsSuccess(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := newConversationHandler(convRepo, nil, nil, userRepo)
	router := setupConversationRouter(handler)

	convRepo.On("ListConversations", mock.Anything, 1).Return([]models.ConversationSummary{{ConversationID: 3, PartnerID: 2}}, nil).Once()
	userRepo.On("BulkUsers", mock.Anything, []int{2}).Return([]models.User{{ID: 2, Username: "mentor", FirstName: "Ada", LastName: "Nyberg"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	conversations := resp["conversations"].([]any)
	require.Len(t, conversations, 1)
	first := conversations[0].(map[string]any)
	assert.Equal(t, "Ada Nyberg", first["partner_name"])

	convRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestListConversationsRepoError(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	handler := newConversationHandler(convRepo, nil, nil, new(mocks.UserRepositoryMock))
	router := setupConversationRouter(handler)

	convRepo.On("ListConversations", mock.Anything, 1).Return(([]models.ConversationSummary)(nil), assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	convRepo.AssertExpectations(t)
}

func TestGetMessagesExcludesNonParticipant(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	handler := newConversationHandler(convRepo, new(mocks.MessageRepositoryMock), new(mocks.ReactionRepositoryMock), new(mocks.UserRepositoryMock))
	router := setupConversationRouter(handler)

	convRepo.On("GetConversation", mock.Anything, 5).Return(models.Conversation{ID: 5, Participant1ID: 8, Participant2ID: 9}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations/5/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	convRepo.AssertExpectations(t)
}

func TestGetMessagesWithReactions(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	reactionRepo := new(mocks.ReactionRepositoryMock)
	handler := newConversationHandler(convRepo, messageRepo, reactionRepo, new(mocks.UserRepositoryMock))
	router := setupConversationRouter(handler)

	convRepo.On("GetConversation", mock.Anything, 5).Return(models.Conversation{ID: 5, Participant1ID: 1, Participant2ID: 2}, nil).Once()
	messageRepo.On("ListMessages", mock.Anything, 5).Return([]models.Message{{ID: 1, ConversationID: 5, SenderID: 2}}, nil).Once()
	reactionRepo.On("ListForMessages", mock.Anything, []int{1}).
		Return(map[int][]models.Reaction{1: {{MessageID: 1, UserID: 1, Emoji: "🔥"}}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations/5/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	messageRepo.AssertExpectations(t)
	reactionRepo.AssertExpectations(t)
}
