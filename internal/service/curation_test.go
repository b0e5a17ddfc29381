package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curateddiscoveries/backend/internal/models"
	"github.com/curateddiscoveries/backend/internal/service"
	"github.com/curateddiscoveries/backend/internal/testhelpers"
	"github.com/curateddiscoveries/backend/internal/types"
)

func TestCreateCurationWithTags(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewCurationService(db, nil)
	ctx := context.Background()

	owner, _ := registerUser(t, db, "owner@example.com", "owner")

	curation, err := svc.Create(ctx, owner.ID, &types.CreateCurationRequest{
		Title:       "  Desert Island Albums  ",
		Description: "Records I would take anywhere.",
		Tags:        []string{"Music", "music", "All Time Favorites"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Desert Island Albums", curation.Title)

	got, err := svc.Get(ctx, curation.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 2)
	slugs := []string{got.Tags[0].Slug, got.Tags[1].Slug}
	assert.Contains(t, slugs, "music")
	assert.Contains(t, slugs, "all-time-favorites")

	// Reusing a tag links the existing row instead of duplicating it.
	_, err = svc.Create(ctx, owner.ID, &types.CreateCurationRequest{
		Title: "More Music",
		Tags:  []string{"music"},
	})
	require.NoError(t, err)

	var tagCount int64
	require.NoError(t, db.Model(&models.Tag{}).Where("slug = ?", "music").Count(&tagCount).Error)
	assert.Equal(t, int64(1), tagCount)
}

func TestCreateCurationValidation(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewCurationService(db, nil)
	ctx := context.Background()

	owner, _ := registerUser(t, db, "owner@example.com", "owner")

	_, err := svc.Create(ctx, owner.ID, &types.CreateCurationRequest{Title: "   "})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = svc.Create(ctx, uuid.Nil, &types.CreateCurationRequest{Title: "No one"})
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
}

func TestItemPositionsAppend(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewCurationService(db, nil)
	ctx := context.Background()

	owner, _ := registerUser(t, db, "owner@example.com", "owner")
	curation, err := svc.Create(ctx, owner.ID, &types.CreateCurationRequest{Title: "Reading List"})
	require.NoError(t, err)

	first, err := svc.AddItem(ctx, owner.ID, curation.ID, &types.AddItemRequest{Title: "First"})
	require.NoError(t, err)
	second, err := svc.AddItem(ctx, owner.ID, curation.ID, &types.AddItemRequest{Title: "Second"})
	require.NoError(t, err)
	third, err := svc.AddItem(ctx, owner.ID, curation.ID, &types.AddItemRequest{Title: "Third"})
	require.NoError(t, err)

	assert.Equal(t, 0, first.Position)
	assert.Equal(t, 1, second.Position)
	assert.Equal(t, 2, third.Position)

	// Deleting from the middle leaves a gap; new items still append above
	// the historical maximum.
	require.NoError(t, svc.DeleteItem(ctx, owner.ID, second.ID))
	fourth, err := svc.AddItem(ctx, owner.ID, curation.ID, &types.AddItemRequest{Title: "Fourth"})
	require.NoError(t, err)
	assert.Equal(t, 3, fourth.Position)

	got, err := svc.Get(ctx, curation.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
	assert.Equal(t, "First", got.Items[0].Title)
	assert.Equal(t, "Third", got.Items[1].Title)
	assert.Equal(t, "Fourth", got.Items[2].Title)
}

func TestCurationOwnership(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewCurationService(db, nil)
	ctx := context.Background()

	owner, _ := registerUser(t, db, "owner@example.com", "owner")
	stranger, _ := registerUser(t, db, "stranger@example.com", "stranger")
	curation, err := svc.Create(ctx, owner.ID, &types.CreateCurationRequest{Title: "Mine"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, stranger.ID, curation.ID, &types.UpdateCurationRequest{Title: "Stolen"})
	assert.ErrorIs(t, err, service.ErrForbidden)

	err = svc.Delete(ctx, stranger.ID, curation.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = svc.AddItem(ctx, stranger.ID, curation.ID, &types.AddItemRequest{Title: "Sneaky"})
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = svc.Update(ctx, owner.ID, uuid.New(), &types.UpdateCurationRequest{Title: "Ghost"})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpdateCurationReplacesTags(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewCurationService(db, nil)
	ctx := context.Background()

	owner, _ := registerUser(t, db, "owner@example.com", "owner")
	curation, err := svc.Create(ctx, owner.ID, &types.CreateCurationRequest{
		Title: "Changing",
		Tags:  []string{"old"},
	})
	require.NoError(t, err)

	desc := "Updated description."
	_, err = svc.Update(ctx, owner.ID, curation.ID, &types.UpdateCurationRequest{
		Description: &desc,
		Tags:        []string{"new", "fresh"},
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, curation.ID)
	require.NoError(t, err)
	assert.Equal(t, "Changing", got.Title)
	assert.Equal(t, desc, got.Description)
	require.Len(t, got.Tags, 2)

	// Nil tags leave the association alone.
	_, err = svc.Update(ctx, owner.ID, curation.ID, &types.UpdateCurationRequest{Title: "Renamed"})
	require.NoError(t, err)
	got, err = svc.Get(ctx, curation.ID)
	require.NoError(t, err)
	assert.Len(t, got.Tags, 2)
}

func TestDeleteCurationCascades(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	curations := service.NewCurationService(db, nil)
	social := service.NewSocialService(db, nil, testBaseURL)
	ctx := context.Background()

	owner, _ := registerUser(t, db, "owner@example.com", "owner")
	fan, _ := registerUser(t, db, "fan@example.com", "fan")
	curation, err := curations.Create(ctx, owner.ID, &types.CreateCurationRequest{Title: "Doomed"})
	require.NoError(t, err)

	_, err = curations.AddItem(ctx, owner.ID, curation.ID, &types.AddItemRequest{Title: "Item"})
	require.NoError(t, err)
	_, err = social.Like(ctx, fan.ID, curation.ID)
	require.NoError(t, err)
	_, _, err = social.AddComment(ctx, fan.ID, curation.ID, "Shame this will go.")
	require.NoError(t, err)
	require.NoError(t, social.Save(ctx, fan.ID, curation.ID))

	require.NoError(t, curations.Delete(ctx, owner.ID, curation.ID))

	for _, m := range []interface{}{&models.CurationItem{}, &models.Like{}, &models.Comment{}, &models.SavedCuration{}} {
		var count int64
		require.NoError(t, db.Model(m).Where("curation_id = ?", curation.ID).Count(&count).Error)
		assert.Equal(t, int64(0), count)
	}

	_, err = curations.Get(ctx, curation.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestListCurations(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	curations := service.NewCurationService(db, nil)
	social := service.NewSocialService(db, nil, testBaseURL)
	ctx := context.Background()

	alice, _ := registerUser(t, db, "alice@example.com", "alice")
	bob, _ := registerUser(t, db, "bob@example.com", "bob")

	tagged, err := curations.Create(ctx, alice.ID, &types.CreateCurationRequest{
		Title: "Tagged",
		Tags:  []string{"music"},
	})
	require.NoError(t, err)
	_, err = curations.Create(ctx, bob.ID, &types.CreateCurationRequest{Title: "Untagged"})
	require.NoError(t, err)

	_, err = social.Like(ctx, bob.ID, tagged.ID)
	require.NoError(t, err)

	all, err := curations.List(ctx, service.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byUser, err := curations.List(ctx, service.ListOptions{UserID: &alice.ID})
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, "Tagged", byUser[0].Title)
	assert.Equal(t, int64(1), byUser[0].LikesCount)
	assert.Equal(t, int64(0), byUser[0].CommentsCount)

	byTag, err := curations.List(ctx, service.ListOptions{Tag: "Music"})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "Tagged", byTag[0].Title)
}
