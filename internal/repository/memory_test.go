package repository

import (
	"context"
	"testing"
	"time"

	"jojam/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionStore_SetGetDelete(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	session := testSession("tok-1")
	require.NoError(t, store.SetSession(ctx, session, time.Hour))

	got, err := store.GetSession(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, session, got)

	require.NoError(t, store.DeleteSession(ctx, "tok-1"))

	_, err = store.GetSession(ctx, "tok-1")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	require.NoError(t, store.SetSession(ctx, testSession("tok-2"), -time.Second))

	_, err := store.GetSession(ctx, "tok-2")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestMemorySessionStore_CheckRateLimit(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, err := store.CheckRateLimit(ctx, "user:3", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := store.CheckRateLimit(ctx, "user:3", 5, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// Different keys are tracked independently
	ok, err = store.CheckRateLimit(ctx, "user:4", 5, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
