package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/curateddiscoveries/backend/internal/models"
	"github.com/curateddiscoveries/backend/internal/types"
)

const statsCacheTTL = 60 * time.Second

// SocialService is the facade for like/follow/save/comment/share writes.
// Every join-table write is an idempotent upsert, and every counter-mutating
// operation returns the authoritative new count so callers never compute
// counts themselves.
type SocialService struct {
	db      *gorm.DB
	rdb     *redis.Client // optional: user stats cache
	baseURL string
}

func NewSocialService(db *gorm.DB, rdb *redis.Client, baseURL string) *SocialService {
	return &SocialService{db: db, rdb: rdb, baseURL: strings.TrimRight(baseURL, "/")}
}

// Like records a like and returns the curation's like count. Liking twice is
// a no-op: the second call leaves the count unchanged.
func (s *SocialService) Like(ctx context.Context, userID, curationID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, ErrUnauthenticated
	}
	if err := s.curationExists(ctx, curationID); err != nil {
		return 0, err
	}

	like := models.Like{UserID: userID, CurationID: curationID}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "curation_id"}},
		DoNothing: true,
	}).Create(&like).Error
	if err != nil {
		return 0, err
	}

	s.invalidateStats(ctx, userID)
	return s.count(ctx, &models.Like{}, "curation_id = ?", curationID)
}

// Unlike removes a like and returns the curation's like count. Removing an
// absent like is a no-op.
func (s *SocialService) Unlike(ctx context.Context, userID, curationID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, ErrUnauthenticated
	}
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND curation_id = ?", userID, curationID).
		Delete(&models.Like{}).Error; err != nil {
		return 0, err
	}

	s.invalidateStats(ctx, userID)
	return s.count(ctx, &models.Like{}, "curation_id = ?", curationID)
}

// Follow makes the caller follow target and returns target's follower count.
func (s *SocialService) Follow(ctx context.Context, followerID, followingID uuid.UUID) (int64, error) {
	if followerID == uuid.Nil {
		return 0, ErrUnauthenticated
	}
	if followerID == followingID {
		return 0, fmt.Errorf("%w: cannot follow yourself", ErrValidation)
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Profile{}).Where("user_id = ?", followingID).Count(&count).Error; err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, ErrNotFound
	}

	follow := models.Follow{FollowerID: followerID, FollowingID: followingID}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "follower_id"}, {Name: "following_id"}},
		DoNothing: true,
	}).Create(&follow).Error
	if err != nil {
		return 0, err
	}

	s.invalidateStats(ctx, followerID)
	s.invalidateStats(ctx, followingID)
	return s.count(ctx, &models.Follow{}, "following_id = ?", followingID)
}

// Unfollow removes a follow edge and returns target's follower count.
func (s *SocialService) Unfollow(ctx context.Context, followerID, followingID uuid.UUID) (int64, error) {
	if followerID == uuid.Nil {
		return 0, ErrUnauthenticated
	}
	if err := s.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{}).Error; err != nil {
		return 0, err
	}

	s.invalidateStats(ctx, followerID)
	s.invalidateStats(ctx, followingID)
	return s.count(ctx, &models.Follow{}, "following_id = ?", followingID)
}

// Save bookmarks a curation for the caller. Idempotent.
func (s *SocialService) Save(ctx context.Context, userID, curationID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrUnauthenticated
	}
	if err := s.curationExists(ctx, curationID); err != nil {
		return err
	}

	saved := models.SavedCuration{UserID: userID, CurationID: curationID}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "curation_id"}},
		DoNothing: true,
	}).Create(&saved).Error
}

// Unsave removes a bookmark. Removing an absent bookmark is a no-op.
func (s *SocialService) Unsave(ctx context.Context, userID, curationID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrUnauthenticated
	}
	return s.db.WithContext(ctx).
		Where("user_id = ? AND curation_id = ?", userID, curationID).
		Delete(&models.SavedCuration{}).Error
}

// AddComment attaches a comment and returns it with the curation's new
// comment count.
func (s *SocialService) AddComment(ctx context.Context, userID, curationID uuid.UUID, content string) (*models.Comment, int64, error) {
	if userID == uuid.Nil {
		return nil, 0, ErrUnauthenticated
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, 0, fmt.Errorf("%w: comment cannot be empty", ErrValidation)
	}
	if len(content) > 2000 {
		return nil, 0, fmt.Errorf("%w: comment too long", ErrValidation)
	}
	if err := s.curationExists(ctx, curationID); err != nil {
		return nil, 0, err
	}

	comment := &models.Comment{UserID: userID, CurationID: curationID, Content: content}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, 0, err
	}

	count, err := s.count(ctx, &models.Comment{}, "curation_id = ?", curationID)
	if err != nil {
		return nil, 0, err
	}
	return comment, count, nil
}

// UpdateComment edits the caller's own comment; anyone else's is not found.
func (s *SocialService) UpdateComment(ctx context.Context, userID, commentID uuid.UUID, content string) (*models.Comment, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment cannot be empty", ErrValidation)
	}
	if len(content) > 2000 {
		return nil, fmt.Errorf("%w: comment too long", ErrValidation)
	}

	result := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ? AND user_id = ?", commentID, userID).
		Update("content", content)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, "id = ?", commentID).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes the caller's own comment and returns the curation's
// new comment count.
func (s *SocialService) DeleteComment(ctx context.Context, userID, commentID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, ErrUnauthenticated
	}

	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, "id = ?", commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if comment.UserID != userID {
		return 0, ErrNotFound
	}

	if err := s.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", commentID).Error; err != nil {
		return 0, err
	}
	return s.count(ctx, &models.Comment{}, "curation_id = ?", comment.CurationID)
}

// GetComments lists a curation's comments with author info, newest first.
func (s *SocialService) GetComments(ctx context.Context, curationID uuid.UUID, limit, offset int) ([]types.CommentWithAuthor, error) {
	var comments []types.CommentWithAuthor
	err := s.db.WithContext(ctx).Model(&models.Comment{}).
		Select("comments.id, comments.content, comments.created_at, comments.updated_at, comments.user_id, profiles.username, profiles.avatar_url").
		Joins("JOIN profiles ON profiles.user_id = comments.user_id").
		Where("comments.curation_id = ?", curationID).
		Order("comments.created_at DESC").
		Limit(normalizeLimit(limit)).Offset(offset).
		Find(&comments).Error
	return comments, err
}

// Share records a share event and tells the caller what to do with the URL:
// open it for recognized platforms, copy it for everything else.
func (s *SocialService) Share(ctx context.Context, userID, curationID uuid.UUID, platform string) (*types.ShareResult, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if err := s.curationExists(ctx, curationID); err != nil {
		return nil, err
	}

	platform = strings.ToLower(strings.TrimSpace(platform))
	if platform == "" {
		platform = "copy"
	}

	share := models.Share{UserID: userID, CurationID: curationID, Platform: platform}
	if err := s.db.WithContext(ctx).Create(&share).Error; err != nil {
		return nil, err
	}

	curationURL := fmt.Sprintf("%s/curation/%s", s.baseURL, curationID)
	escaped := url.QueryEscape(curationURL)

	result := &types.ShareResult{Platform: platform}
	switch platform {
	case "twitter":
		result.Method = "redirect"
		result.URL = "https://twitter.com/intent/tweet?url=" + escaped
	case "facebook":
		result.Method = "redirect"
		result.URL = "https://www.facebook.com/sharer/sharer.php?u=" + escaped
	case "linkedin":
		result.Method = "redirect"
		result.URL = "https://www.linkedin.com/sharing/share-offsite/?url=" + escaped
	default:
		result.Method = "copy"
		result.URL = curationURL
	}
	return result, nil
}

// IsLiked reports whether the user liked the curation. Anonymous callers and
// missing rows are false, never an error.
func (s *SocialService) IsLiked(ctx context.Context, userID, curationID uuid.UUID) (bool, error) {
	return s.pairExists(ctx, userID, &models.Like{}, "user_id = ? AND curation_id = ?", curationID)
}

// IsSaved reports whether the user bookmarked the curation.
func (s *SocialService) IsSaved(ctx context.Context, userID, curationID uuid.UUID) (bool, error) {
	return s.pairExists(ctx, userID, &models.SavedCuration{}, "user_id = ? AND curation_id = ?", curationID)
}

// IsFollowing reports whether follower follows target.
func (s *SocialService) IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	return s.pairExists(ctx, followerID, &models.Follow{}, "follower_id = ? AND following_id = ?", followingID)
}

// UserStats returns a user's counter block. The four counts run
// concurrently and the result is cached briefly; the writes that change a
// counter drop the cache entry.
func (s *SocialService) UserStats(ctx context.Context, userID uuid.UUID) (*types.UserStats, error) {
	if s.rdb != nil {
		if payload, err := s.rdb.Get(ctx, statsKey(userID)).Bytes(); err == nil {
			var stats types.UserStats
			if err := json.Unmarshal(payload, &stats); err == nil {
				return &stats, nil
			}
		}
	}

	var stats types.UserStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Follow{}).Where("following_id = ?", userID).Count(&stats.Followers).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&stats.Following).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Curation{}).Where("user_id = ?", userID).Count(&stats.Curations).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Like{}).Where("user_id = ?", userID).Count(&stats.Likes).Error
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(&stats); err == nil {
			s.rdb.Set(ctx, statsKey(userID), payload, statsCacheTTL)
		}
	}
	return &stats, nil
}

func (s *SocialService) curationExists(ctx context.Context, curationID uuid.UUID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Curation{}).Where("id = ?", curationID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SocialService) pairExists(ctx context.Context, userID uuid.UUID, model interface{}, cond string, targetID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(model).Where(cond, userID, targetID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *SocialService) count(ctx context.Context, model interface{}, cond string, id uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(model).Where(cond, id).Count(&count).Error
	return count, err
}

func (s *SocialService) invalidateStats(ctx context.Context, userID uuid.UUID) {
	if s.rdb != nil {
		s.rdb.Del(ctx, statsKey(userID))
	}
}

func statsKey(userID uuid.UUID) string {
	return "stats:user:" + userID.String()
}
