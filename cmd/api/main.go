package main

import (
	"context"
	"log"

	"github.com/curateddiscoveries/backend/config"
	"github.com/curateddiscoveries/backend/internal/database"
	"github.com/curateddiscoveries/backend/internal/server"
)

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

	rdb, err := database.NewRedisClient(cfg)
	if err != nil {
		// Redis backs caching, rate limits and cross-instance session
		// events; the API itself still works without it.
		log.Printf("redis unavailable, continuing without it: %v", err)
		rdb = nil
	}

	s3cfg, err := config.NewS3Config(context.Background())
	if err != nil {
		log.Printf("S3 unavailable, image uploads disabled: %v", err)
		s3cfg = nil
	}

	srv := server.New(cfg, db, rdb, s3cfg)
	if err := srv.Start(); err != nil {
		log.Fatalf("server error: %v", err)
	}
	log.Println("server stopped")
}
