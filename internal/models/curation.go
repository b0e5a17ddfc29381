package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Curation is a user-authored ranked list of items.
type Curation struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	ImageURL    string         `gorm:"size:255" json:"image_url"`

	Items []CurationItem `gorm:"foreignKey:CurationID" json:"items,omitempty"`
	Tags  []Tag          `gorm:"many2many:curation_tags" json:"tags,omitempty"`
}

func (c *Curation) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CurationItem is an ordered member of a curation. Position is dense and
// owner-assigned: new items append at max(position)+1.
type CurationItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CurationID  uuid.UUID `gorm:"type:uuid;not null;index" json:"curation_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	ExternalURL string    `gorm:"size:255" json:"external_url"`
	ImageURL    string    `gorm:"size:255" json:"image_url"`
	Position    int       `gorm:"not null;default:0" json:"position"`
}

func (i *CurationItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Tag is a label attachable to curations through the curation_tags join table.
type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Slug      string    `gorm:"size:50;not null;uniqueIndex" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *Tag) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
