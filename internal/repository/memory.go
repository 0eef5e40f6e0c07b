package repository

import (
	"context"
	"sync"
	"time"

	"jojam/internal/database"
	"jojam/internal/models"
)

// MemorySessionStore is the in-process fallback when Redis is unavailable.
// Sessions held here are lost on restart.
type MemorySessionStore struct {
	sessions   sync.Map
	rateLimits sync.Map
}

type sessionEntry struct {
	session   *models.Session
	expiresAt time.Time
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (r *MemorySessionStore) GetSession(ctx context.Context, token string) (*models.Session, error) {
	val, ok := r.sessions.Load(token)
	if !ok {
		return nil, database.ErrNotFound
	}
	entry := val.(*sessionEntry)
	if time.Now().After(entry.expiresAt) {
		r.sessions.Delete(token)
		return nil, database.ErrNotFound
	}
	return entry.session, nil
}

func (r *MemorySessionStore) SetSession(ctx context.Context, session *models.Session, ttl time.Duration) error {
	r.sessions.Store(session.Token, &sessionEntry{session: session, expiresAt: time.Now().Add(ttl)})
	return nil
}

func (r *MemorySessionStore) DeleteSession(ctx context.Context, token string) error {
	r.sessions.Delete(token)
	return nil
}

func (r *MemorySessionStore) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(key)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{count: 1, expiresAt: now.Add(window)}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(key, entry)
	return entry.count <= limit, nil
}
