package db

import (
	"context"
	"testing"

	"github.com/makemydestiny/travel-booking/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMongoUserCollection_InsertUser(t *testing.T) {
	store := integrationStore(t)
	ctx := context.Background()

	user := &models.User{
		Name:              "Test User",
		Email:             "Test@Example.com ",
		PasswordHash:      "hashedpassword",
		Role:              models.RoleUser,
		VerificationToken: "token-1",
	}
	require.NoError(t, store.Users.InsertUser(ctx, user))
	assert.False(t, user.ID.IsZero())
	assert.Equal(t, "test@example.com", user.Email)
	assert.NotZero(t, user.CreatedAt)

	duplicate := &models.User{Name: "Other", Email: "test@example.com", PasswordHash: "x"}
	assert.ErrorIs(t, store.Users.InsertUser(ctx, duplicate), models.ErrEmailTaken)
}

func TestMongoUserCollection_Find(t *testing.T) {
	store := integrationStore(t)
	ctx := context.Background()

	user := &models.User{Name: "Test User", Email: "test@example.com", PasswordHash: "x", Role: models.RoleAdmin, VerificationToken: "token-2"}
	require.NoError(t, store.Users.InsertUser(ctx, user))

	byID, err := store.Users.FindUserByID(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, user.Name, byID.Name)

	byEmail, err := store.Users.FindUserByEmail(ctx, "TEST@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byToken, err := store.Users.FindUserByVerificationToken(ctx, "token-2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byToken.ID)

	_, err = store.Users.FindUserByID(ctx, "invalid-id")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
	_, err = store.Users.FindUserByEmail(ctx, "nonexistent@example.com")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestMongoUserCollection_MarkVerifiedAndLastLogin(t *testing.T) {
	store := integrationStore(t)
	ctx := context.Background()

	user := &models.User{Name: "Test User", Email: "test@example.com", PasswordHash: "x", VerificationToken: "token-3"}
	require.NoError(t, store.Users.InsertUser(ctx, user))

	require.NoError(t, store.Users.MarkVerified(ctx, user.ID.Hex()))
	require.NoError(t, store.Users.UpdateLastLogin(ctx, user.ID.Hex()))

	found, err := store.Users.FindUserByID(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.True(t, found.IsVerified)
	assert.Empty(t, found.VerificationToken)
	assert.NotNil(t, found.LastLogin)

	_, err = store.Users.FindUserByVerificationToken(ctx, "token-3")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}
