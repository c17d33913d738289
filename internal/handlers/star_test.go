package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/access"
	"messaging-service/internal/mocks"
	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

func setupStarRouter(handler *StarHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.POST("/messages/:message_id/star", handler.Star)
	r.DELETE("/messages/:message_id/star", handler.Unstar)
	r.GET("/starred", handler.ListStarred)
	return r
}

func newStarHandler(convRepo *mocks.ConversationRepositoryMock, starRepo *mocks.StarRepositoryMock, messageRepo *mocks.MessageRepositoryMock) *StarHandler {
	return NewStarHandler(access.NewGuard(convRepo), starRepo, messageRepo)
}

func TestStarSuccess(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	starRepo := new(mocks.StarRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	router := setupStarRouter(newStarHandler(convRepo, starRepo, messageRepo))

	messageRepo.On("GetMessage", mock.Anything, 7).Return(models.Message{ID: 7, ConversationID: 5}, nil).Once()
	convRepo.On("GetConversation", mock.Anything, 5).Return(pairConversation(), nil).Once()
	starRepo.On("Star", mock.Anything, 1, 7, 5).Return(models.StarredMessage{ID: 3, UserID: 1, MessageID: 7, ConversationID: 5}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages/7/star", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	starRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
}

func TestStarDeletedMessage(t *testing.T) {
	starRepo := new(mocks.StarRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	router := setupStarRouter(newStarHandler(new(mocks.ConversationRepositoryMock), starRepo, messageRepo))

	messageRepo.On("GetMessage", mock.Anything, 7).Return(models.Message{ID: 7, ConversationID: 5, IsDeleted: true}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages/7/star", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	starRepo.AssertNotCalled(t, "Star", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStarForbiddenForNonParticipant(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	starRepo := new(mocks.StarRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	router := setupStarRouter(newStarHandler(convRepo, starRepo, messageRepo))

	messageRepo.On("GetMessage", mock.Anything, 7).Return(models.Message{ID: 7, ConversationID: 5}, nil).Once()
	convRepo.On("GetConversation", mock.Anything, 5).Return(models.Conversation{ID: 5, Participant1ID: 8, Participant2ID: 9}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages/7/star", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	starRepo.AssertNotCalled(t, "Star", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUnstarNotFound(t *testing.T) {
	starRepo := new(mocks.StarRepositoryMock)
	router := setupStarRouter(newStarHandler(new(mocks.ConversationRepositoryMock), starRepo, new(mocks.MessageRepositoryMock)))

	starRepo.On("Unstar", mock.Anything, 1, 7).Return(repositories.ErrStarNotFound).Once()

	req := httptest.NewRequest(http.MethodDelete, "/messages/7/star", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	starRepo.AssertExpectations(t)
}

// Starred listings are always scoped to the caller; another participant's
// stars never leak through this endpoint.
func TestListStarredScopedToCaller(t *testing.T) {
	starRepo := new(mocks.StarRepositoryMock)
	router := setupStarRouter(newStarHandler(new(mocks.ConversationRepositoryMock), starRepo, new(mocks.MessageRepositoryMock)))

	starRepo.On("ListStarred", mock.Anything, 1, (*int)(nil)).Return([]models.StarredMessageDetail{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/starred", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	starRepo.AssertExpectations(t)
}

func TestListStarredWithConversationFilter(t *testing.T) {
	starRepo := new(mocks.StarRepositoryMock)
	router := setupStarRouter(newStarHandler(new(mocks.ConversationRepositoryMock), starRepo, new(mocks.MessageRepositoryMock)))

	conversationID := 5
	starRepo.On("ListStarred", mock.Anything, 1, &conversationID).Return([]models.StarredMessageDetail{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/starred?conversation_id=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	starRepo.AssertExpectations(t)
}
