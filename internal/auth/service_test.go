package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veritum/veritum-pro/internal/auth"
	"github.com/veritum/veritum-pro/internal/database/models"
	"github.com/veritum/veritum-pro/internal/testutil"
)

func setupAuthService(t *testing.T) *auth.Service {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })
	return auth.NewService(db, testutil.CreateTestJWTService())
}

func TestService_Register(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	t.Run("creates owner account", func(t *testing.T) {
		resp, err := svc.Register(ctx, auth.RegisterInput{
			Email:    "ana@escritorio.example",
			Password: "correct-horse-battery",
			Name:     "Ana Souza",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, models.RoleOwner, resp.User.Role)
		assert.True(t, resp.User.IsActive)
		assert.Contains(t, resp.User.Username, "ana")
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, auth.RegisterInput{
			Email:    "dup@escritorio.example",
			Password: "correct-horse-battery",
			Name:     "First",
		})
		require.NoError(t, err)

		_, err = svc.Register(ctx, auth.RegisterInput{
			Email:    "dup@escritorio.example",
			Password: "correct-horse-battery",
			Name:     "Second",
		})
		assert.ErrorIs(t, err, auth.ErrUserExists)
	})
}

func TestService_Login(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, auth.RegisterInput{
		Email:    "login@escritorio.example",
		Password: "correct-horse-battery",
		Name:     "Login User",
	})
	require.NoError(t, err)

	t.Run("succeeds with valid credentials", func(t *testing.T) {
		resp, err := svc.Login(ctx, auth.LoginInput{
			Email:    "login@escritorio.example",
			Password: "correct-horse-battery",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.False(t, resp.ResetRequired)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginInput{
			Email:    "login@escritorio.example",
			Password: "wrong",
		})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("rejects unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginInput{
			Email:    "nobody@escritorio.example",
			Password: "whatever",
		})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestService_Login_InactiveAndReset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := auth.NewService(db, testutil.CreateTestJWTService())
	ctx := context.Background()

	t.Run("inactive account is rejected", func(t *testing.T) {
		user := testutil.CreateTestUser(t, db)
		require.NoError(t, db.Model(user).Update("is_active", false).Error)

		_, err := svc.Login(ctx, auth.LoginInput{
			Email:    user.Email,
			Password: "testpassword123",
		})
		assert.ErrorIs(t, err, auth.ErrInactiveUser)
	})

	t.Run("reset-required flag surfaces on login", func(t *testing.T) {
		user := testutil.CreateTestUser(t, db)
		require.NoError(t, db.Model(user).Update("reset_required", true).Error)

		resp, err := svc.Login(ctx, auth.LoginInput{
			Email:    user.Email,
			Password: "testpassword123",
		})
		require.NoError(t, err)
		assert.True(t, resp.ResetRequired)
	})
}

func TestService_CompleteReset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := auth.NewService(db, testutil.CreateTestJWTService())
	ctx := context.Background()

	t.Run("clears the flag and issues a fresh token", func(t *testing.T) {
		user := testutil.CreateTestUser(t, db)
		require.NoError(t, db.Model(user).Update("reset_required", true).Error)

		resp, err := svc.CompleteReset(ctx, auth.ResetPasswordInput{
			UserID:      user.ID,
			NewPassword: "brand-new-password",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.False(t, resp.User.ResetRequired)

		// The new password is the one that works now.
		login, err := svc.Login(ctx, auth.LoginInput{
			Email:    user.Email,
			Password: "brand-new-password",
		})
		require.NoError(t, err)
		assert.False(t, login.ResetRequired)

		_, err = svc.Login(ctx, auth.LoginInput{
			Email:    user.Email,
			Password: "testpassword123",
		})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("rejects reset when not required", func(t *testing.T) {
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CompleteReset(ctx, auth.ResetPasswordInput{
			UserID:      user.ID,
			NewPassword: "whatever-else",
		})
		assert.ErrorIs(t, err, auth.ErrResetNotRequired)
	})
}
