package service

import (
	"context"
	"testing"
	"time"

	"jojam/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSessionManager(store *mockSessionStore, ttl time.Duration) *SessionManager {
	logger := zerolog.Nop()
	return NewSessionManager(store, ttl, &logger)
}

func TestSessionCreate(t *testing.T) {
	store := new(mockSessionStore)
	mgr := newSessionManager(store, time.Hour)

	user := &models.User{ID: 3, Username: "alice", Role: models.RoleUser, BandName: "The Jams"}
	store.On("SetSession", mock.Anything, mock.MatchedBy(func(s *models.Session) bool {
		return s.UserID == 3 && s.Role == models.RoleUser && s.Token != ""
	}), time.Hour).Return(nil)

	session, err := mgr.Create(context.Background(), user)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "The Jams", session.BandName)

	actor := session.Actor()
	assert.Equal(t, int64(3), actor.ID)
	assert.False(t, actor.IsAdmin())
}

func TestSessionManager_DefaultTTL(t *testing.T) {
	store := new(mockSessionStore)
	mgr := newSessionManager(store, 0)

	wantTTL := time.Duration(models.DefaultSessionTTL) * time.Second
	store.On("SetSession", mock.Anything, mock.Anything, wantTTL).Return(nil)

	_, err := mgr.Create(context.Background(), &models.User{ID: 1})
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestSessionCheckRateLimit(t *testing.T) {
	store := new(mockSessionStore)
	mgr := newSessionManager(store, time.Hour)
	ctx := context.Background()

	store.On("CheckRateLimit", ctx, "user:3", 60, time.Minute).Return(true, nil).Once()
	assert.NoError(t, mgr.CheckRateLimit(ctx, "user:3", 60, time.Minute))

	store.On("CheckRateLimit", ctx, "user:3", 60, time.Minute).Return(false, nil).Once()
	assert.ErrorIs(t, mgr.CheckRateLimit(ctx, "user:3", 60, time.Minute), ErrRateLimited)
}
