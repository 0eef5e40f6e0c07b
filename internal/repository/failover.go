package repository

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"jojam/internal/database"
	"jojam/internal/domain"
	"jojam/internal/models"

	"github.com/rs/zerolog"
)

// FailoverSessionStore serves from the primary store until it fails, then
// switches to the fallback and probes the primary once a minute.
type FailoverSessionStore struct {
	primary  domain.SessionStore
	fallback domain.SessionStore
	logger   *zerolog.Logger
	isDown   atomic.Bool
	// lastCheck holds a unix timestamp; concurrent requests read and
	// write it without a lock.
	lastCheck atomic.Int64
}

func NewFailoverSessionStore(primary, fallback domain.SessionStore, logger *zerolog.Logger) *FailoverSessionStore {
	return &FailoverSessionStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverSessionStore) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary session store failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().Unix())
}

func (r *FailoverSessionStore) GetSession(ctx context.Context, token string) (*models.Session, error) {
	if !r.isDown.Load() {
		session, err := r.primary.GetSession(ctx, token)
		if err == nil || errors.Is(err, database.ErrNotFound) {
			return session, err
		}
		r.markDown(err)
	}

	if r.isDown.Load() && time.Now().Unix()-r.lastCheck.Load() > int64(time.Minute/time.Second) {
		session, err := r.primary.GetSession(ctx, token)
		if err == nil || errors.Is(err, database.ErrNotFound) {
			r.isDown.Store(false)
			return session, err
		}
		r.lastCheck.Store(time.Now().Unix())
	}

	return r.fallback.GetSession(ctx, token)
}

func (r *FailoverSessionStore) SetSession(ctx context.Context, session *models.Session, ttl time.Duration) error {
	if !r.isDown.Load() {
		err := r.primary.SetSession(ctx, session, ttl)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.SetSession(ctx, session, ttl)
}

func (r *FailoverSessionStore) DeleteSession(ctx context.Context, token string) error {
	if !r.isDown.Load() {
		err := r.primary.DeleteSession(ctx, token)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.DeleteSession(ctx, token)
}

func (r *FailoverSessionStore) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
	}

	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}
