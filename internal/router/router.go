package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/curateddiscoveries/backend/internal/api"
	"github.com/curateddiscoveries/backend/internal/database"
	"github.com/curateddiscoveries/backend/internal/middleware"
)

// Handlers bundles the API handlers the router mounts.
type Handlers struct {
	Auth     *api.AuthHandler
	Profile  *api.ProfileHandler
	Curation *api.CurationHandler
	Social   *api.SocialHandler
	Image    *api.ImageHandler
}

// SetupRouter configures the application routes.
//
// Read endpoints use optional auth so personalization flags (is_liked,
// is_following) work for signed-in callers without shutting anonymous ones
// out. Content creation additionally requires a verified email, and write
// endpoints sit behind per-user rate limits.
func SetupRouter(
	h Handlers,
	validator middleware.TokenValidator,
	db *gorm.DB,
	rdb *redis.Client,
	allowedOrigins []string,
) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS(allowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(c.Request.Context(), db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	curationLimiter := middleware.NewCurationCreationRateLimiter(rdb)
	socialLimiter := middleware.NewSocialActionRateLimiter(rdb)

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.GET("/verify-email", h.Auth.VerifyEmail)
	}

	// Public reads with optional personalization.
	public := v1.Group("")
	public.Use(middleware.OptionalAuthMiddleware(validator))
	{
		public.GET("/curations", h.Curation.List)
		public.GET("/curations/:id", h.Curation.Get)
		public.GET("/curations/:id/comments", h.Social.ListComments)
		public.GET("/profiles/:username", h.Profile.Get)
		public.GET("/profiles/:username/stats", h.Profile.Stats)
		public.GET("/profiles/:username/followers", h.Profile.Followers)
		public.GET("/profiles/:username/following", h.Profile.Following)
	}

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(validator))
	{
		protected.POST("/auth/logout", h.Auth.Logout)
		protected.GET("/session", h.Auth.Session)

		profile := protected.Group("/profile")
		{
			profile.GET("", h.Profile.GetMe)
			profile.PUT("", h.Profile.UpdateMe)
		}

		// Publishing requires a verified email.
		publishing := protected.Group("")
		publishing.Use(middleware.RequireEmailVerification(db))
		{
			publishing.POST("/curations", curationLimiter.RateLimitMiddleware(), h.Curation.Create)
			publishing.PUT("/curations/:id", h.Curation.Update)
			publishing.DELETE("/curations/:id", h.Curation.Delete)
			publishing.POST("/curations/:id/items", h.Curation.AddItem)
			publishing.PUT("/curations/:id/items/:itemID", h.Curation.UpdateItem)
			publishing.DELETE("/curations/:id/items/:itemID", h.Curation.DeleteItem)
		}

		social := protected.Group("")
		social.Use(socialLimiter.RateLimitMiddleware())
		{
			social.POST("/curations/:id/like", h.Social.Like)
			social.DELETE("/curations/:id/like", h.Social.Unlike)
			social.POST("/curations/:id/save", h.Social.Save)
			social.DELETE("/curations/:id/save", h.Social.Unsave)
			social.POST("/curations/:id/share", h.Social.Share)
			social.POST("/curations/:id/comments", h.Social.AddComment)
			social.PUT("/comments/:id", h.Social.UpdateComment)
			social.DELETE("/comments/:id", h.Social.DeleteComment)
			social.POST("/users/:id/follow", h.Social.Follow)
			social.DELETE("/users/:id/follow", h.Social.Unfollow)
		}

		images := protected.Group("/images")
		{
			images.POST("/curation", h.Image.UploadCurationImage)
			images.POST("/profile", h.Image.UploadProfileImage)
		}

		rateLimits := protected.Group("/rate-limits")
		{
			rateLimits.GET("/curation-creation", curationLimiter.StatusHandler())
			rateLimits.GET("/social-actions", socialLimiter.StatusHandler())
		}
	}

	return router
}
