package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/curateddiscoveries/backend/internal/mocks"
	"github.com/curateddiscoveries/backend/internal/models"
	"github.com/curateddiscoveries/backend/internal/service"
	"github.com/curateddiscoveries/backend/internal/testhelpers"
)

func newAuthService(t *testing.T) *service.AuthService {
	t.Helper()
	db := testhelpers.SetupTestDatabase(t)
	return service.NewAuthService(db, "test-secret", nil, nil, nil)
}

func TestRegisterCreatesUserAndProfile(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, profile, token, err := svc.Register(ctx, "Jane@Example.com", "password123", "Jane Doe", "jane_doe")
	require.NoError(t, err)
	require.NotNil(t, user)
	require.NotNil(t, profile)
	assert.NotEmpty(t, token)

	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, "jane_doe", profile.Username)
	assert.Equal(t, user.ID, profile.UserID)
	assert.False(t, profile.EmailVerified)
	assert.NotEqual(t, "password123", user.PasswordHash)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "jane@example.com", "password123", "Jane Doe", "jane_doe")
	require.NoError(t, err)

	// Same address with different case must still collide.
	_, _, _, err = svc.Register(ctx, "JANE@example.com", "password123", "Jane Two", "jane_two")
	assert.ErrorIs(t, err, service.ErrDuplicate)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "jane@example.com", "password123", "Jane Doe", "jane_doe")
	require.NoError(t, err)

	_, _, _, err = svc.Register(ctx, "other@example.com", "password123", "Other Jane", "Jane_Doe")
	assert.ErrorIs(t, err, service.ErrDuplicate)
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		email    string
		password string
		fullName string
		username string
	}{
		{"malformed email", "not-an-email", "password123", "Jane", "jane_doe"},
		{"short password", "jane@example.com", "12345", "Jane", "jane_doe"},
		{"long password", "jane@example.com", string(make([]byte, 73)), "Jane", "jane_doe"},
		{"short username", "jane@example.com", "password123", "Jane", "ab"},
		{"bad username chars", "jane@example.com", "password123", "Jane", "jane doe!"},
		{"empty name", "jane@example.com", "password123", "   ", "jane_doe"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := svc.Register(ctx, tc.email, tc.password, tc.fullName, tc.username)
			assert.ErrorIs(t, err, service.ErrValidation)
		})
	}
}

func TestLoginSuccessAndNormalization(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "jane@example.com", "password123", "Jane Doe", "jane_doe")
	require.NoError(t, err)

	user, profile, token, err := svc.Login(ctx, "  JANE@Example.COM  ", "password123")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, "jane_doe", profile.Username)
	assert.NotEmpty(t, token)
}

func TestLoginRejectionsAreOpaque(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "jane@example.com", "password123", "Jane Doe", "jane_doe")
	require.NoError(t, err)

	_, _, _, wrongPassword := svc.Login(ctx, "jane@example.com", "wrongpass")
	_, _, _, unknownEmail := svc.Login(ctx, "nobody@example.com", "password123")

	assert.ErrorIs(t, wrongPassword, service.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, service.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestValidateToken(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, profile, token, err := svc.Register(ctx, "jane@example.com", "password123", "Jane Doe", "jane_doe")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, profile.Username, claims.Username)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)

	_, err = svc.ValidateToken(ctx, "not.a.token")
	assert.ErrorIs(t, err, service.ErrUnauthenticated)

	other := service.NewAuthService(testhelpers.SetupTestDatabase(t), "other-secret", nil, nil, nil)
	_, err = other.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
}

func TestLogoutDenylistsToken(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	svc := service.NewAuthService(testhelpers.SetupTestDatabase(t), "test-secret", rdb, nil, nil)
	ctx := context.Background()

	_, _, token, err := svc.Register(ctx, "jane@example.com", "password123", "Jane Doe", "jane_doe")
	require.NoError(t, err)

	_, err = svc.ValidateToken(ctx, token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))

	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)

	// Only the signed-out token is revoked; a fresh login works.
	_, _, fresh, err := svc.Login(ctx, "jane@example.com", "password123")
	require.NoError(t, err)
	_, err = svc.ValidateToken(ctx, fresh)
	assert.NoError(t, err)
}

func TestLogoutRejectsInvalidToken(t *testing.T) {
	svc := newAuthService(t)
	err := svc.Logout(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
}

func TestLogoutWithoutRedis(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, _, token, err := svc.Register(ctx, "jane@example.com", "password123", "Jane Doe", "jane_doe")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))

	// Without a denylist to write to, the token stays valid until it
	// expires; revocation is a Redis-backed feature.
	_, err = svc.ValidateToken(ctx, token)
	assert.NoError(t, err)
}

func TestVerifyEmail(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	email := new(mocks.MockEmailService)
	email.On("SendVerificationEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	email.On("SendWelcomeEmail", mock.Anything, mock.Anything).Return(nil)

	svc := service.NewAuthService(db, "test-secret", nil, nil, email)
	ctx := context.Background()

	user, _, _, err := svc.Register(ctx, "jane@example.com", "password123", "Jane Doe", "jane_doe")
	require.NoError(t, err)

	var rec models.EmailVerificationToken
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&rec).Error)
	assert.True(t, rec.ExpiresAt.After(time.Now()))

	verified, err := svc.VerifyEmail(ctx, rec.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.ID)

	var profile models.Profile
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&profile).Error)
	assert.True(t, profile.EmailVerified)

	// The token is single-use.
	_, err = svc.VerifyEmail(ctx, rec.Token)
	assert.ErrorIs(t, err, service.ErrNotFound)

	email.AssertCalled(t, "SendVerificationEmail", mock.Anything, mock.Anything, rec.Token)
	email.AssertCalled(t, "SendWelcomeEmail", mock.Anything, mock.Anything)
}

func TestVerifyEmailExpiredToken(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewAuthService(db, "test-secret", nil, nil, nil)
	ctx := context.Background()

	user, _, _, err := svc.Register(ctx, "jane@example.com", "password123", "Jane Doe", "jane_doe")
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.EmailVerificationToken{}).
		Where("user_id = ?", user.ID).
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	var rec models.EmailVerificationToken
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&rec).Error)

	_, err = svc.VerifyEmail(ctx, rec.Token)
	assert.ErrorIs(t, err, service.ErrValidation)
}
