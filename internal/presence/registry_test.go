package presence_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/access"
	"messaging-service/internal/mocks"
	"messaging-service/internal/models"
	"messaging-service/internal/presence"
	"messaging-service/internal/repositories"
)

type typingCall struct {
	conversationID int
	userID         int
	typing         bool
}

type recordingAnnouncer struct {
	mu       sync.Mutex
	presence []models.UserPresence
	typing   []typingCall
}

func (a *recordingAnnouncer) PresenceChanged(_ context.Context, p models.UserPresence) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.presence = append(a.presence, p)
}

func (a *recordingAnnouncer) TypingChanged(_ context.Context, conversationID int, userID int, typing bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.typing = append(a.typing, typingCall{conversationID, userID, typing})
}

func memberGuard(conversationID int, userID int) *access.Guard {
	convRepo := new(mocks.ConversationRepositoryMock)
	convRepo.On("GetConversation", mock.Anything, conversationID).
		Return(models.Conversation{ID: conversationID, Participant1ID: userID, Participant2ID: userID + 1}, nil)
	return access.NewGuard(convRepo)
}

func TestSetStatusAnnounces(t *testing.T) {
	repo := new(mocks.PresenceRepositoryMock)
	repo.On("UpsertStatus", mock.Anything, 1, models.StatusBusy).
		Return(models.UserPresence{UserID: 1, IsOnline: true, Status: models.StatusBusy}, nil).Once()

	announcer := &recordingAnnouncer{}
	registry := presence.NewRegistry(repo, nil, announcer)

	got, err := registry.SetStatus(context.Background(), 1, models.StatusBusy)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBusy, got.Status)
	require.Len(t, announcer.presence, 1)
	assert.Equal(t, models.StatusBusy, announcer.presence[0].Status)
	repo.AssertExpectations(t)
}

func TestSetStatusRejectsUnknown(t *testing.T) {
	repo := new(mocks.PresenceRepositoryMock)
	registry := presence.NewRegistry(repo, nil, &recordingAnnouncer{})

	_, err := registry.SetStatus(context.Background(), 1, "sleeping")
	assert.ErrorIs(t, err, presence.ErrInvalidStatus)
	repo.AssertNotCalled(t, "UpsertStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetPresenceDefaultsWhenAbsent(t *testing.T) {
	repo := new(mocks.PresenceRepositoryMock)
	repo.On("GetPresence", mock.Anything, 42).
		Return(models.UserPresence{}, repositories.ErrPresenceNotFound).Once()

	registry := presence.NewRegistry(repo, nil, &recordingAnnouncer{})

	got, err := registry.GetPresence(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 42, got.UserID)
	assert.False(t, got.IsOnline)
	assert.Equal(t, models.StatusAvailable, got.Status)
}

func TestSetTypingAnnouncesAndClearsPrevious(t *testing.T) {
	repo := new(mocks.PresenceRepositoryMock)
	convRepo := new(mocks.ConversationRepositoryMock)
	convRepo.On("GetConversation", mock.Anything, 10).
		Return(models.Conversation{ID: 10, Participant1ID: 1, Participant2ID: 2}, nil)
	convRepo.On("GetConversation", mock.Anything, 11).
		Return(models.Conversation{ID: 11, Participant1ID: 1, Participant2ID: 2}, nil)

	announcer := &recordingAnnouncer{}
	registry := presence.NewRegistry(repo, access.NewGuard(convRepo), announcer)

	first := 10
	second := 11
	require.NoError(t, registry.SetTyping(context.Background(), 1, &first))
	require.NoError(t, registry.SetTyping(context.Background(), 1, &second))

	require.Len(t, announcer.typing, 3)
	assert.Equal(t, typingCall{10, 1, true}, announcer.typing[0])
	assert.Equal(t, typingCall{11, 1, true}, announcer.typing[1])
	assert.Equal(t, typingCall{10, 1, false}, announcer.typing[2])
}

func TestSetTypingRequiresMembership(t *testing.T) {
	repo := new(mocks.PresenceRepositoryMock)
	convRepo := new(mocks.ConversationRepositoryMock)
	convRepo.On("GetConversation", mock.Anything, 10).
		Return(models.Conversation{ID: 10, Participant1ID: 5, Participant2ID: 6}, nil)

	announcer := &recordingAnnouncer{}
	registry := presence.NewRegistry(repo, access.NewGuard(convRepo), announcer)

	conversationID := 10
	err := registry.SetTyping(context.Background(), 1, &conversationID)
	assert.ErrorIs(t, err, access.ErrForbidden)
	assert.Empty(t, announcer.typing)
}

func TestDisconnectedClearsTyping(t *testing.T) {
	repo := new(mocks.PresenceRepositoryMock)
	repo.On("SetOnline", mock.Anything, 1, false).
		Return(models.UserPresence{UserID: 1, IsOnline: false, Status: models.StatusAvailable}, nil).Once()

	announcer := &recordingAnnouncer{}
	registry := presence.NewRegistry(repo, memberGuard(10, 1), announcer)

	conversationID := 10
	require.NoError(t, registry.SetTyping(context.Background(), 1, &conversationID))
	require.NoError(t, registry.Disconnected(context.Background(), 1))

	require.Len(t, announcer.typing, 2)
	assert.Equal(t, typingCall{10, 1, false}, announcer.typing[1])
	require.Len(t, announcer.presence, 1)
	assert.False(t, announcer.presence[0].IsOnline)
	repo.AssertExpectations(t)
}
