package services

import (
	"context"
	"testing"

	"storefront-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func strptr(s string) *string { return &s }

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Admin Can Change Role", func(t *testing.T) {
		user := &models.User{ID: primitive.NewObjectID(), Email: "a@example.com", Role: models.RoleCustomer}
		svc := NewUserService(newFakeUserRepo(user), zap.NewNop())

		updated, svcErr := svc.UpdateUser(ctx, user.ID.Hex(), &models.UpdateUserRequest{Role: strptr(models.RoleAdmin)}, models.RoleAdmin)

		require.Nil(t, svcErr)
		assert.Equal(t, models.RoleAdmin, updated.Role)
	})

	t.Run("Customer Cannot Change Role", func(t *testing.T) {
		user := &models.User{ID: primitive.NewObjectID(), Email: "a@example.com", Role: models.RoleCustomer}
		repo := newFakeUserRepo(user)
		svc := NewUserService(repo, zap.NewNop())

		_, svcErr := svc.UpdateUser(ctx, user.ID.Hex(), &models.UpdateUserRequest{Role: strptr(models.RoleAdmin)}, models.RoleCustomer)

		require.NotNil(t, svcErr)
		assert.Equal(t, 403, svcErr.StatusCode)

		stored, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleCustomer, stored.Role)
	})

	t.Run("Email Collision", func(t *testing.T) {
		alice := &models.User{ID: primitive.NewObjectID(), Email: "alice@example.com"}
		bob := &models.User{ID: primitive.NewObjectID(), Email: "bob@example.com"}
		svc := NewUserService(newFakeUserRepo(alice, bob), zap.NewNop())

		_, svcErr := svc.UpdateUser(ctx, bob.ID.Hex(), &models.UpdateUserRequest{Email: strptr("alice@example.com")}, models.RoleAdmin)

		require.NotNil(t, svcErr)
		assert.Equal(t, 409, svcErr.StatusCode)
	})

	t.Run("Empty Update Is A No-Op", func(t *testing.T) {
		user := &models.User{ID: primitive.NewObjectID(), Name: "Alice", Email: "alice@example.com"}
		svc := NewUserService(newFakeUserRepo(user), zap.NewNop())

		updated, svcErr := svc.UpdateUser(ctx, user.ID.Hex(), &models.UpdateUserRequest{}, models.RoleAdmin)

		require.Nil(t, svcErr)
		assert.Equal(t, "Alice", updated.Name)
	})

	t.Run("Unknown User", func(t *testing.T) {
		svc := NewUserService(newFakeUserRepo(), zap.NewNop())

		_, svcErr := svc.UpdateUser(ctx, primitive.NewObjectID().Hex(), &models.UpdateUserRequest{Name: strptr("X")}, models.RoleAdmin)

		require.NotNil(t, svcErr)
		assert.Equal(t, 404, svcErr.StatusCode)
	})
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		user := &models.User{ID: primitive.NewObjectID(), Email: "a@example.com"}
		repo := newFakeUserRepo(user)
		svc := NewUserService(repo, zap.NewNop())

		require.Nil(t, svc.DeleteUser(ctx, user.ID.Hex()))

		_, err := repo.FindByID(ctx, user.ID)
		assert.Error(t, err)
	})

	t.Run("Unknown User", func(t *testing.T) {
		svc := NewUserService(newFakeUserRepo(), zap.NewNop())

		svcErr := svc.DeleteUser(ctx, primitive.NewObjectID().Hex())

		require.NotNil(t, svcErr)
		assert.Equal(t, 404, svcErr.StatusCode)
	})
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(newFakeUserRepo(
		&models.User{ID: primitive.NewObjectID(), Email: "a@example.com"},
		&models.User{ID: primitive.NewObjectID(), Email: "b@example.com"},
	), zap.NewNop())

	users, svcErr := svc.ListUsers(ctx)

	require.Nil(t, svcErr)
	assert.Len(t, users, 2)
}
