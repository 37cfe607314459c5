package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/quaymarket/storefront/internal/models"
	"github.com/quaymarket/storefront/internal/store"
)

func newTestUser(t *testing.T, email string, role models.Role) *models.User {
	userID, err := uuid.NewV7()
	require.NoError(t, err)
	now := time.Now()
	return &models.User{
		UserID:    userID,
		Email:     email,
		Name:      "Test User",
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestUserStore_createAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()
	user := newTestUser(t, "alice@example.com", models.RoleUser)

	require.NoError(t, s.Create(ctx, user))

	got, err := s.Get(ctx, user.UserID)
	require.NoError(t, err)
	require.Equal(t, user.Email, got.Email)
	require.Equal(t, models.RoleUser, got.Role)
}

func TestUserStore_getNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()

	userID, err := uuid.NewV7()
	require.NoError(t, err)

	_, err = s.Get(ctx, userID)
	require.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestUserStore_getByEmailCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()
	user := newTestUser(t, "Alice@Example.com", models.RoleUser)

	require.NoError(t, s.Create(ctx, user))

	got, err := s.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, user.UserID, got.UserID)
}

func TestUserStore_duplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()

	require.NoError(t, s.Create(ctx, newTestUser(t, "alice@example.com", models.RoleUser)))

	err := s.Create(ctx, newTestUser(t, "ALICE@example.com", models.RoleUser))
	require.ErrorIs(t, err, store.ErrUserAlreadyExists)
}

func TestUserStore_updateRole(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()
	user := newTestUser(t, "alice@example.com", models.RoleUser)
	require.NoError(t, s.Create(ctx, user))

	require.NoError(t, s.UpdateRole(ctx, user.UserID, models.RoleAdmin))

	got, err := s.Get(ctx, user.UserID)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, got.Role)
}

func TestUserStore_updateRoleNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()

	userID, err := uuid.NewV7()
	require.NoError(t, err)

	err = s.UpdateRole(ctx, userID, models.RoleAdmin)
	require.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestUserStore_softDeleteHidesFromList(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()
	alice := newTestUser(t, "alice@example.com", models.RoleUser)
	bob := newTestUser(t, "bob@example.com", models.RoleUser)
	require.NoError(t, s.Create(ctx, alice))
	require.NoError(t, s.Create(ctx, bob))

	require.NoError(t, s.Delete(ctx, alice.UserID))

	users, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, bob.UserID, users[0].UserID)

	// Soft-deleted users remain fetchable by ID, flagged deleted.
	got, err := s.Get(ctx, alice.UserID)
	require.NoError(t, err)
	require.True(t, got.IsDeleted())
}

func TestUserStore_cloneOnRead(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()
	user := newTestUser(t, "alice@example.com", models.RoleUser)
	require.NoError(t, s.Create(ctx, user))

	got, err := s.Get(ctx, user.UserID)
	require.NoError(t, err)
	got.Role = models.RoleAdmin

	again, err := s.Get(ctx, user.UserID)
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, again.Role)
}
