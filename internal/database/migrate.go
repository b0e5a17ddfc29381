package database

import (
	"gorm.io/gorm"

	"github.com/curateddiscoveries/backend/internal/models"
)

// RunMigrations creates or updates the schema for every model. The same path
// serves Postgres in cmd/migrate and the in-memory SQLite used by tests.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.EmailVerificationToken{},
		&models.Curation{},
		&models.CurationItem{},
		&models.Tag{},
		&models.Like{},
		&models.Follow{},
		&models.SavedCuration{},
		&models.Share{},
		&models.Comment{},
	)
}
