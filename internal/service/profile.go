package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/curateddiscoveries/backend/internal/models"
	"github.com/curateddiscoveries/backend/internal/session"
	"github.com/curateddiscoveries/backend/internal/types"
)

// ProfileService handles public identity records.
type ProfileService struct {
	db  *gorm.DB
	bus *session.Bus
}

func NewProfileService(db *gorm.DB, bus *session.Bus) *ProfileService {
	return &ProfileService{db: db, bus: bus}
}

// GetByUserID retrieves a profile by its owning user id.
func (s *ProfileService) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// LookupProfile is the session manager's loader: a missing profile row is
// (nil, nil), not an error.
func (s *ProfileService) LookupProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile, err := s.GetByUserID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return profile, err
}

// GetByUsername retrieves a profile by username, normalized first.
func (s *ProfileService) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("username = ?", NormalizeUsername(username)).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// Update applies the caller's edits to their own profile. A username change
// is re-validated and re-checked for uniqueness.
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*models.Profile, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.Username != "" {
		username := NormalizeUsername(req.Username)
		if err := validateUsername(username); err != nil {
			return nil, err
		}
		if username != profile.Username {
			var count int64
			if err := s.db.WithContext(ctx).Model(&models.Profile{}).Where("username = ?", username).Count(&count).Error; err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, fmt.Errorf("%w: username already taken", ErrDuplicate)
			}
			profile.Username = username
		}
	}
	if req.FullName != nil {
		profile.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = *req.AvatarURL
	}
	if req.CoverURL != nil {
		profile.CoverURL = *req.CoverURL
	}
	if req.Website != nil {
		profile.Website = *req.Website
	}

	if err := s.db.WithContext(ctx).Save(&profile).Error; err != nil {
		return nil, mapDBError(err)
	}

	if s.bus != nil {
		if err := s.bus.Publish(ctx, session.Event{Type: session.EventProfileUpdated, UserID: userID}); err != nil {
			log.Printf("failed to publish profile-updated event for %s: %v", userID, err)
		}
	}
	return &profile, nil
}

// Followers lists the profiles following the given user, newest first.
func (s *ProfileService) Followers(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Profile, error) {
	var profiles []models.Profile
	err := s.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = profiles.user_id").
		Where("follows.following_id = ?", userID).
		Order("follows.created_at DESC").
		Limit(normalizeLimit(limit)).Offset(offset).
		Find(&profiles).Error
	return profiles, err
}

// Following lists the profiles the given user follows, newest first.
func (s *ProfileService) Following(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Profile, error) {
	var profiles []models.Profile
	err := s.db.WithContext(ctx).
		Joins("JOIN follows ON follows.following_id = profiles.user_id").
		Where("follows.follower_id = ?", userID).
		Order("follows.created_at DESC").
		Limit(normalizeLimit(limit)).Offset(offset).
		Find(&profiles).Error
	return profiles, err
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}
