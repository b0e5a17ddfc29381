package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Like records that a user liked a curation. The (user, curation) pair is
// unique; writes go through an ON CONFLICT DO NOTHING upsert so a repeated
// like is a no-op.
type Like struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_curation" json:"user_id"`
	CurationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_curation;index" json:"curation_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (l *Like) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Follow records that follower follows following. Self-follows are rejected
// at the service boundary.
type Follow struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FollowerID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair" json:"follower_id"`
	FollowingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair;index" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (f *Follow) BeforeCreate(_ *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// SavedCuration is a private bookmark of a curation.
type SavedCuration struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_saved_user_curation" json:"user_id"`
	CurationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_saved_user_curation;index" json:"curation_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (SavedCuration) TableName() string {
	return "saved_curations"
}

func (s *SavedCuration) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Share is an event row recording that a user shared a curation to a platform.
// Shares are not unique per pair: sharing twice records two events.
type Share struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	CurationID uuid.UUID `gorm:"type:uuid;not null;index" json:"curation_id"`
	Platform   string    `gorm:"size:20;not null" json:"platform"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *Share) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Comment is text attached to a curation, mutable only by its author.
type Comment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	CurationID uuid.UUID `gorm:"type:uuid;not null;index" json:"curation_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
