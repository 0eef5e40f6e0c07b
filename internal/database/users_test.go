package database

import (
	"context"
	"testing"

	"jojam/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(username string) *models.User {
	return &models.User{
		Username:     username,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		Role:         models.RoleUser,
		BandName:     "The Jams",
		Email:        username + "@example.com",
		Contact:      "555-0100",
	}
}

func TestCreateAndGetUser(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	u := newTestUser("alice")
	require.NoError(t, db.CreateUser(ctx, u))
	assert.NotZero(t, u.ID)

	byID, err := db.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
	assert.Equal(t, models.RoleUser, byID.Role)

	byName, err := db.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	require.NoError(t, db.CreateUser(ctx, newTestUser("alice")))

	err := db.CreateUser(ctx, newTestUser("alice"))
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestGetUser_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	_, err := db.GetUserByID(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = db.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUser_AdminIsProtected(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	admin := newTestUser("boss")
	admin.Role = models.RoleAdmin
	require.NoError(t, db.CreateUser(ctx, admin))

	user := newTestUser("alice")
	require.NoError(t, db.CreateUser(ctx, user))

	rows, err := db.DeleteUser(ctx, admin.ID)
	require.NoError(t, err)
	assert.Zero(t, rows)

	rows, err = db.DeleteUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
}

func TestCountUsersByRole(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	admin := newTestUser("boss")
	admin.Role = models.RoleAdmin
	require.NoError(t, db.CreateUser(ctx, admin))
	require.NoError(t, db.CreateUser(ctx, newTestUser("alice")))
	require.NoError(t, db.CreateUser(ctx, newTestUser("bob")))

	count, err := db.CountUsersByRole(ctx, models.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	users, err := db.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}
