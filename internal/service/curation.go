package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/curateddiscoveries/backend/internal/models"
	"github.com/curateddiscoveries/backend/internal/types"
)

var tagSlugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// CurationService handles curations, their items and tags.
type CurationService struct {
	db  *gorm.DB
	rdb *redis.Client // optional: stats cache invalidation
}

func NewCurationService(db *gorm.DB, rdb *redis.Client) *CurationService {
	return &CurationService{db: db, rdb: rdb}
}

// ListOptions filter the curation feed.
type ListOptions struct {
	UserID *uuid.UUID
	Tag    string
	Limit  int
	Offset int
}

// Create inserts a curation with its tags. Tags are find-or-create by slug.
func (s *CurationService) Create(ctx context.Context, userID uuid.UUID, req *types.CreateCurationRequest) (*models.Curation, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	curation := &models.Curation{
		UserID:      userID,
		Title:       title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(curation).Error; err != nil {
			return err
		}
		tags, err := findOrCreateTags(tx, req.Tags)
		if err != nil {
			return err
		}
		if len(tags) > 0 {
			return tx.Model(curation).Association("Tags").Append(tags)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, userID)
	return curation, nil
}

// Get returns one curation with its ordered items, tags and counters.
func (s *CurationService) Get(ctx context.Context, id uuid.UUID) (*types.CurationSummary, error) {
	var curation models.Curation
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Tags").
		First(&curation, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	summary := &types.CurationSummary{Curation: curation}
	if err := s.db.WithContext(ctx).Model(&models.Like{}).Where("curation_id = ?", id).Count(&summary.LikesCount).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Comment{}).Where("curation_id = ?", id).Count(&summary.CommentsCount).Error; err != nil {
		return nil, err
	}
	return summary, nil
}

// List returns a recent-first feed page with per-row counters computed by
// correlated subqueries, so a page costs one round trip.
func (s *CurationService) List(ctx context.Context, opts ListOptions) ([]types.CurationSummary, error) {
	query := s.db.WithContext(ctx).Model(&models.Curation{}).
		Select("curations.*, " +
			"(SELECT COUNT(*) FROM likes WHERE likes.curation_id = curations.id) AS likes_count, " +
			"(SELECT COUNT(*) FROM comments WHERE comments.curation_id = curations.id) AS comments_count")

	if opts.UserID != nil {
		query = query.Where("curations.user_id = ?", *opts.UserID)
	}
	if opts.Tag != "" {
		query = query.
			Joins("JOIN curation_tags ON curation_tags.curation_id = curations.id").
			Joins("JOIN tags ON tags.id = curation_tags.tag_id").
			Where("tags.slug = ?", slugify(opts.Tag))
	}

	var summaries []types.CurationSummary
	err := query.Order("curations.created_at DESC").
		Limit(normalizeLimit(opts.Limit)).Offset(opts.Offset).
		Find(&summaries).Error
	return summaries, err
}

// Update edits a curation's own fields; only the owner may call it.
func (s *CurationService) Update(ctx context.Context, userID, id uuid.UUID, req *types.UpdateCurationRequest) (*models.Curation, error) {
	curation, err := s.ownedCuration(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		curation.Title = strings.TrimSpace(req.Title)
	}
	if req.Description != nil {
		curation.Description = *req.Description
	}
	if req.ImageURL != nil {
		curation.ImageURL = *req.ImageURL
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(curation).Error; err != nil {
			return err
		}
		if req.Tags == nil {
			return nil
		}
		tags, err := findOrCreateTags(tx, req.Tags)
		if err != nil {
			return err
		}
		return tx.Model(curation).Association("Tags").Replace(tags)
	})
	if err != nil {
		return nil, err
	}
	return curation, nil
}

// Delete removes a curation together with its items and join rows.
func (s *CurationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.ownedCuration(ctx, userID, id); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{&models.CurationItem{}, &models.Like{}, &models.Comment{}, &models.Share{}, &models.SavedCuration{}} {
			if err := tx.Where("curation_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		if err := tx.Exec("DELETE FROM curation_tags WHERE curation_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Curation{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}

	s.invalidateStats(ctx, userID)
	return nil
}

// AddItem appends an item at max(position)+1. The read and insert share a
// transaction so two appends cannot claim the same slot.
func (s *CurationService) AddItem(ctx context.Context, userID, curationID uuid.UUID, req *types.AddItemRequest) (*models.CurationItem, error) {
	if _, err := s.ownedCuration(ctx, userID, curationID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	item := &models.CurationItem{
		CurationID:  curationID,
		Title:       title,
		Description: req.Description,
		ExternalURL: req.ExternalURL,
		ImageURL:    req.ImageURL,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int
		row := tx.Model(&models.CurationItem{}).
			Where("curation_id = ?", curationID).
			Select("COALESCE(MAX(position) + 1, 0)").
			Row()
		if err := row.Scan(&next); err != nil {
			return err
		}
		item.Position = next
		return tx.Create(item).Error
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem edits an item; ownership is checked through the parent curation.
func (s *CurationService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, req *types.UpdateItemRequest) (*models.CurationItem, error) {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		item.Title = strings.TrimSpace(req.Title)
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.ExternalURL != nil {
		item.ExternalURL = *req.ExternalURL
	}
	if req.ImageURL != nil {
		item.ImageURL = *req.ImageURL
	}

	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes an item. Remaining positions keep their values; order
// stays correct and new items still append above the old maximum.
func (s *CurationService) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&models.CurationItem{}, "id = ?", item.ID).Error
}

func (s *CurationService) ownedCuration(ctx context.Context, userID, id uuid.UUID) (*models.Curation, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	var curation models.Curation
	if err := s.db.WithContext(ctx).First(&curation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if curation.UserID != userID {
		return nil, ErrForbidden
	}
	return &curation, nil
}

func (s *CurationService) ownedItem(ctx context.Context, userID, itemID uuid.UUID) (*models.CurationItem, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	var item models.CurationItem
	if err := s.db.WithContext(ctx).First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, err := s.ownedCuration(ctx, userID, item.CurationID); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *CurationService) invalidateStats(ctx context.Context, userID uuid.UUID) {
	if s.rdb != nil {
		s.rdb.Del(ctx, statsKey(userID))
	}
}

func findOrCreateTags(tx *gorm.DB, names []string) ([]models.Tag, error) {
	var tags []models.Tag
	seen := make(map[string]bool)
	for _, name := range names {
		slug := slugify(name)
		if slug == "" || seen[slug] {
			continue
		}
		if !tagSlugRe.MatchString(slug) {
			return nil, fmt.Errorf("%w: invalid tag %q", ErrValidation, name)
		}
		seen[slug] = true

		var tag models.Tag
		if err := tx.Where("slug = ?", slug).FirstOrCreate(&tag, models.Tag{Slug: slug}).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "-")
	return strings.Trim(slug, "-")
}
