package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"jojam/internal/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailoverSessionStore_UsesPrimary(t *testing.T) {
	primary, _ := setupRedisStore(t)
	fallback := NewMemorySessionStore()
	logger := zerolog.Nop()
	store := NewFailoverSessionStore(primary, fallback, &logger)
	ctx := context.Background()

	session := testSession("tok-1")
	require.NoError(t, store.SetSession(ctx, session, time.Hour))

	// The primary holds it, the fallback does not
	_, err := primary.GetSession(ctx, "tok-1")
	require.NoError(t, err)
	_, err = fallback.GetSession(ctx, "tok-1")
	assert.ErrorIs(t, err, database.ErrNotFound)

	got, err := store.GetSession(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, session.UserID, got.UserID)
}

func TestFailoverSessionStore_FallsBackWhenPrimaryDies(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	primary := NewRedisSessionStore(client)
	fallback := NewMemorySessionStore()
	logger := zerolog.Nop()
	store := NewFailoverSessionStore(primary, fallback, &logger)
	ctx := context.Background()

	mr.Close()

	session := testSession("tok-2")
	require.NoError(t, store.SetSession(ctx, session, time.Hour))

	got, err := store.GetSession(ctx, "tok-2")
	require.NoError(t, err)
	assert.Equal(t, session.UserID, got.UserID)

	// Rate limiting keeps working on the fallback
	ok, err := store.CheckRateLimit(ctx, "user:3", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.CheckRateLimit(ctx, "user:3", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFailoverSessionStore_ConcurrentRequests(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	primary := NewRedisSessionStore(client)
	fallback := NewMemorySessionStore()
	logger := zerolog.Nop()
	store := NewFailoverSessionStore(primary, fallback, &logger)
	ctx := context.Background()

	// A dead primary makes every request touch the down/lastCheck state;
	// run under -race this covers concurrent failover bookkeeping.
	mr.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			session := testSession(fmt.Sprintf("tok-c-%d", n))
			assert.NoError(t, store.SetSession(ctx, session, time.Hour))
			_, err := store.GetSession(ctx, session.Token)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.True(t, store.isDown.Load())
}

func TestFailoverSessionStore_MissOnPrimaryIsNotFailure(t *testing.T) {
	primary, _ := setupRedisStore(t)
	fallback := NewMemorySessionStore()
	logger := zerolog.Nop()
	store := NewFailoverSessionStore(primary, fallback, &logger)

	// A clean miss must not trip the failover switch
	_, err := store.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, database.ErrNotFound)
	assert.False(t, store.isDown.Load())
}
