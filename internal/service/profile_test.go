package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/curateddiscoveries/backend/internal/models"
	"github.com/curateddiscoveries/backend/internal/service"
	"github.com/curateddiscoveries/backend/internal/testhelpers"
	"github.com/curateddiscoveries/backend/internal/types"
)

func registerUser(t *testing.T, db *gorm.DB, email, username string) (*models.User, *models.Profile) {
	t.Helper()
	auth := service.NewAuthService(db, "test-secret", nil, nil, nil)
	user, profile, _, err := auth.Register(context.Background(), email, "password123", "Test User", username)
	require.NoError(t, err)
	return user, profile
}

func TestProfileUpdate(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewProfileService(db, nil)
	ctx := context.Background()

	user, _ := registerUser(t, db, "jane@example.com", "jane_doe")

	bio := "Collector of odd things."
	website := "https://jane.example.com"
	updated, err := svc.Update(ctx, user.ID, &types.UpdateProfileRequest{
		Username: "Jane_New",
		Bio:      &bio,
		Website:  &website,
	})
	require.NoError(t, err)
	assert.Equal(t, "jane_new", updated.Username)
	assert.Equal(t, bio, updated.Bio)
	assert.Equal(t, website, updated.Website)
	// Untouched fields survive a partial update.
	assert.Equal(t, "Test User", updated.FullName)
}

func TestProfileUpdateRejectsTakenUsername(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewProfileService(db, nil)
	ctx := context.Background()

	user, _ := registerUser(t, db, "jane@example.com", "jane_doe")
	registerUser(t, db, "other@example.com", "taken_name")

	_, err := svc.Update(ctx, user.ID, &types.UpdateProfileRequest{Username: "taken_name"})
	assert.ErrorIs(t, err, service.ErrDuplicate)

	_, err = svc.Update(ctx, user.ID, &types.UpdateProfileRequest{Username: "x"})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestGetByUsernameNormalizes(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewProfileService(db, nil)
	ctx := context.Background()

	_, created := registerUser(t, db, "jane@example.com", "jane_doe")

	profile, err := svc.GetByUsername(ctx, "  JANE_DOE ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, profile.ID)

	_, err = svc.GetByUsername(ctx, "missing")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestLookupProfileMissingIsNil(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewProfileService(db, nil)

	profile, err := svc.LookupProfile(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, profile)
}

func TestFollowersAndFollowing(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	profiles := service.NewProfileService(db, nil)
	social := service.NewSocialService(db, nil, "http://localhost:5173")
	ctx := context.Background()

	target, _ := registerUser(t, db, "target@example.com", "target")
	var followers []*models.User
	for i := 0; i < 3; i++ {
		u, _ := registerUser(t, db, fmt.Sprintf("f%d@example.com", i), fmt.Sprintf("follower_%d", i))
		followers = append(followers, u)
		_, err := social.Follow(ctx, u.ID, target.ID)
		require.NoError(t, err)
	}

	got, err := profiles.Followers(ctx, target.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	following, err := profiles.Following(ctx, followers[0].ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "target", following[0].Username)

	// Limit zero falls back to the default page size rather than nothing.
	got, err = profiles.Followers(ctx, target.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
