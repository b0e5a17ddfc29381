// Command seed loads a small set of test users and curations into the
// database for local development.
package main

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/curateddiscoveries/backend/config"
	"github.com/curateddiscoveries/backend/internal/database"
	"github.com/curateddiscoveries/backend/internal/models"
)

type seedUser struct {
	email    string
	username string
	fullName string
	verified bool
	curation *seedCuration
}

type seedCuration struct {
	title       string
	description string
	tags        []string
	items       []string
}

var seedUsers = []seedUser{
	{
		email:    "ada@example.com",
		username: "ada",
		fullName: "Ada Lovelace",
		verified: true,
		curation: &seedCuration{
			title:       "Essential Computing History",
			description: "Books and essays that shaped how I think about machines.",
			tags:        []string{"books", "history"},
			items:       []string{"The Analytical Engine", "As We May Think", "The Mythical Man-Month"},
		},
	},
	{
		email:    "grace@example.com",
		username: "grace",
		fullName: "Grace Hopper",
		verified: true,
		curation: &seedCuration{
			title:       "Tools I Cannot Work Without",
			description: "A short list of daily drivers.",
			tags:        []string{"tools"},
			items:       []string{"A good compiler", "A nanosecond of wire", "Strong coffee"},
		},
	},
	{
		email:    "newcomer@example.com",
		username: "newcomer",
		fullName: "New Comer",
		verified: false,
	},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("testpassword123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	for _, su := range seedUsers {
		if err := seedOne(db, su, string(hashed)); err != nil {
			log.Fatalf("failed to seed %s: %v", su.email, err)
		}
		log.Printf("seeded %s", su.email)
	}
	log.Println("done; all seed users have password testpassword123")
}

func seedOne(db *gorm.DB, su seedUser, passwordHash string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", su.email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		user := models.User{Email: su.email, PasswordHash: passwordHash}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		profile := models.Profile{
			UserID:        user.ID,
			Username:      su.username,
			FullName:      su.fullName,
			EmailVerified: su.verified,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}

		if su.curation == nil {
			return nil
		}

		curation := models.Curation{
			UserID:      user.ID,
			Title:       su.curation.title,
			Description: su.curation.description,
		}
		if err := tx.Create(&curation).Error; err != nil {
			return err
		}

		for i, title := range su.curation.items {
			item := models.CurationItem{CurationID: curation.ID, Title: title, Position: i}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}

		for _, slug := range su.curation.tags {
			var tag models.Tag
			if err := tx.Where("slug = ?", slug).FirstOrCreate(&tag, models.Tag{Slug: slug}).Error; err != nil {
				return err
			}
			if err := tx.Model(&curation).Association("Tags").Append(&tag); err != nil {
				return err
			}
		}
		return nil
	})
}
