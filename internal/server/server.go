package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/curateddiscoveries/backend/config"
	"github.com/curateddiscoveries/backend/internal/api"
	"github.com/curateddiscoveries/backend/internal/router"
	"github.com/curateddiscoveries/backend/internal/service"
	"github.com/curateddiscoveries/backend/internal/session"
)

// Server wires services, the session manager and the HTTP router together.
type Server struct {
	cfg      *config.Config
	engine   *gin.Engine
	sessions *session.Manager
	http     *http.Server
}

// New builds a fully wired server. The Redis client and S3 config may be
// nil; the features they back degrade to single-instance behavior.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, s3cfg *config.S3Config) *Server {
	bus := session.NewBus(rdb)
	emailSvc := service.NewEmailService(cfg)
	authSvc := service.NewAuthService(db, cfg.JWTSecret, rdb, bus, emailSvc)
	profileSvc := service.NewProfileService(db, bus)
	curationSvc := service.NewCurationService(db, rdb)
	socialSvc := service.NewSocialService(db, rdb, cfg.BaseURL)
	imageSvc := service.NewImageService(s3cfg)

	sessions := session.NewManager(authSvc, profileSvc, bus)

	handlers := router.Handlers{
		Auth:     api.NewAuthHandler(authSvc, sessions),
		Profile:  api.NewProfileHandler(profileSvc, socialSvc, sessions),
		Curation: api.NewCurationHandler(curationSvc, socialSvc),
		Social:   api.NewSocialHandler(socialSvc),
		Image:    api.NewImageHandler(imageSvc),
	}

	engine := router.SetupRouter(handlers, authSvc, db, rdb, cfg.AllowedOrigins)

	return &Server{cfg: cfg, engine: engine, sessions: sessions}
}

// Sessions exposes the session manager, mainly for tests.
func (s *Server) Sessions() *session.Manager {
	return s.sessions
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully. The
// session manager's event loop runs alongside the HTTP listener and stops
// with it.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:    s.cfg.ServerHost + ":" + s.cfg.ServerPort,
		Handler: s.engine,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := s.sessions.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("session event loop stopped: %v", err)
		}
	}()

	go func() {
		log.Printf("listening on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return s.http.Shutdown(shutdownCtx)
}

// Stop shuts the HTTP listener down without waiting for a signal.
func (s *Server) Stop(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}
