package presence

import (
	"context"
	"errors"
	"sync"

	"messaging-service/internal/access"
	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

// ErrInvalidStatus means the requested status is not one of the known set.
var ErrInvalidStatus = errors.New("invalid presence status")

// Announcer receives committed presence changes for best-effort fanout.
type Announcer interface {
	PresenceChanged(ctx context.Context, presence models.UserPresence)
	TypingChanged(ctx context.Context, conversationID int, userID int, typing bool)
}

// Registry owns per-user presence state. Status and the online flag live
// in the store; typing state is memory-only and may be lost on restart.
// Updates for the same user are serialized so a rapid status change cannot
// be clobbered by an earlier-submitted one; updates for different users
// run independently.
type Registry struct {
	repo      repositories.PresenceRepository
	guard     *access.Guard
	announcer Announcer

	mu     sync.Mutex
	typing map[int]int
	userMu map[int]*sync.Mutex
}

// NewRegistry constructs a Registry.
func NewRegistry(repo repositories.PresenceRepository, guard *access.Guard, announcer Announcer) *Registry {
	return &Registry{
		repo:      repo,
		guard:     guard,
		announcer: announcer,
		typing:    make(map[int]int),
		userMu:    make(map[int]*sync.Mutex),
	}
}

func (r *Registry) lockUser(userID int) func() {
	r.mu.Lock()
	m, ok := r.userMu[userID]
	if !ok {
		m = &sync.Mutex{}
		r.userMu[userID] = m
	}
	r.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// Connected handles a transport connect signal: the user is online.
func (r *Registry) Connected(ctx context.Context, userID int) error {
	defer r.lockUser(userID)()

	presence, err := r.repo.SetOnline(ctx, userID, true)
	if err != nil {
		return err
	}
	r.announcer.PresenceChanged(ctx, presence)
	return nil
}

// Disconnected handles a transport disconnect signal: the user goes
// offline, last-seen is stamped and any typing state is cleared. The
// chosen status survives the disconnect.
func (r *Registry) Disconnected(ctx context.Context, userID int) error {
	defer r.lockUser(userID)()

	r.mu.Lock()
	conversationID, wasTyping := r.typing[userID]
	delete(r.typing, userID)
	r.mu.Unlock()

	presence, err := r.repo.SetOnline(ctx, userID, false)
	if err != nil {
		return err
	}
	if wasTyping {
		r.announcer.TypingChanged(ctx, conversationID, userID, false)
	}
	r.announcer.PresenceChanged(ctx, presence)
	return nil
}

// SetStatus upserts the user-chosen status. The record is created online
// when absent.
func (r *Registry) SetStatus(ctx context.Context, userID int, status string) (models.UserPresence, error) {
	if !models.ValidStatus(status) {
		return models.UserPresence{}, ErrInvalidStatus
	}

	defer r.lockUser(userID)()

	presence, err := r.repo.UpsertStatus(ctx, userID, status)
	if err != nil {
		return models.UserPresence{}, err
	}
	r.announcer.PresenceChanged(ctx, presence)
	return r.withTyping(presence), nil
}

// SetTyping records which conversation the user is typing in, or clears it
// when conversationID is nil. The caller must be a participant of the
// target conversation; the guard check keeps typing fanout scoped to it.
func (r *Registry) SetTyping(ctx context.Context, userID int, conversationID *int) error {
	if conversationID != nil {
		if _, err := r.guard.VerifyMembership(ctx, *conversationID, userID); err != nil {
			return err
		}
	}

	defer r.lockUser(userID)()

	r.mu.Lock()
	previous, wasTyping := r.typing[userID]
	if conversationID == nil {
		delete(r.typing, userID)
	} else {
		r.typing[userID] = *conversationID
	}
	r.mu.Unlock()

	if conversationID != nil {
		r.announcer.TypingChanged(ctx, *conversationID, userID, true)
		if wasTyping && previous != *conversationID {
			r.announcer.TypingChanged(ctx, previous, userID, false)
		}
		return nil
	}
	if wasTyping {
		r.announcer.TypingChanged(ctx, previous, userID, false)
	}
	return nil
}

// GetPresence reads a user's presence. A user without a record yields the
// default offline/available state; the call never fails on absence.
func (r *Registry) GetPresence(ctx context.Context, userID int) (models.UserPresence, error) {
	presence, err := r.repo.GetPresence(ctx, userID)
	if errors.Is(err, repositories.ErrPresenceNotFound) {
		return models.DefaultPresence(userID), nil
	}
	if err != nil {
		return models.UserPresence{}, err
	}
	return r.withTyping(presence), nil
}

func (r *Registry) withTyping(presence models.UserPresence) models.UserPresence {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conversationID, ok := r.typing[presence.UserID]; ok {
		id := conversationID
		presence.TypingIn = &id
	}
	return presence
}
