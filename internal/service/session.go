package service

import (
	"context"
	"time"

	"jojam/internal/domain"
	"jojam/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SessionManager issues opaque bearer tokens backed by the session store.
type SessionManager struct {
	store  domain.SessionStore
	ttl    time.Duration
	logger *zerolog.Logger
}

func NewSessionManager(store domain.SessionStore, ttl time.Duration, logger *zerolog.Logger) *SessionManager {
	if ttl <= 0 {
		ttl = time.Duration(models.DefaultSessionTTL) * time.Second
	}
	return &SessionManager{store: store, ttl: ttl, logger: logger}
}

func (m *SessionManager) Create(ctx context.Context, user *models.User) (*models.Session, error) {
	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		Role:      user.Role,
		BandName:  user.BandName,
		CreatedAt: time.Now(),
	}
	if err := m.store.SetSession(ctx, session, m.ttl); err != nil {
		return nil, err
	}

	m.logger.Debug().Int64("user_id", user.ID).Msg("session created")
	return session, nil
}

func (m *SessionManager) Get(ctx context.Context, token string) (*models.Session, error) {
	return m.store.GetSession(ctx, token)
}

func (m *SessionManager) Destroy(ctx context.Context, token string) error {
	return m.store.DeleteSession(ctx, token)
}

// CheckRateLimit returns ErrRateLimited when the key exceeded its window.
func (m *SessionManager) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) error {
	ok, err := m.store.CheckRateLimit(ctx, key, limit, window)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRateLimited
	}
	return nil
}
