package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/curateddiscoveries/backend/internal/models"
	"github.com/curateddiscoveries/backend/internal/service"
	"github.com/curateddiscoveries/backend/internal/session"
	"github.com/curateddiscoveries/backend/internal/types"
)

// ProfileHandler serves profile pages and the caller's own profile.
type ProfileHandler struct {
	profiles service.IProfileService
	social   *service.SocialService
	sessions *session.Manager
}

func NewProfileHandler(profiles service.IProfileService, social *service.SocialService, sessions *session.Manager) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, social: social, sessions: sessions}
}

// GetMe returns the authenticated caller's profile.
func (h *ProfileHandler) GetMe(c *gin.Context) {
	profile, err := h.profiles.GetByUserID(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateMe edits the authenticated caller's profile.
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	var req types.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	userID := currentUserID(c)
	profile, err := h.profiles.Update(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	// The broadcast event refreshes other instances; this one need not
	// wait for its own message to come back around.
	h.sessions.Invalidate(userID)

	c.JSON(http.StatusOK, profile)
}

// Get returns a public profile page: the profile, its counters, and whether
// the caller follows it. Anonymous callers always see is_following false.
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.profiles.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}

	stats, err := h.social.UserStats(c.Request.Context(), profile.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	isFollowing, err := h.social.IsFollowing(c.Request.Context(), currentUserID(c), profile.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":      profile,
		"stats":        stats,
		"is_following": isFollowing,
	})
}

// Stats returns just the counter block for a profile.
func (h *ProfileHandler) Stats(c *gin.Context) {
	profile, err := h.profiles.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}

	stats, err := h.social.UserStats(c.Request.Context(), profile.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ProfileHandler) Followers(c *gin.Context) {
	h.listConnections(c, h.profiles.Followers)
}

func (h *ProfileHandler) Following(c *gin.Context) {
	h.listConnections(c, h.profiles.Following)
}

func (h *ProfileHandler) listConnections(c *gin.Context, list func(context.Context, uuid.UUID, int, int) ([]models.Profile, error)) {
	profile, err := h.profiles.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}

	limit, offset := pagination(c)
	profiles, err := list(c.Request.Context(), profile.UserID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// pagination reads limit/offset query parameters; bad values fall back to
// the service defaults.
func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit"))
	offset, _ = strconv.Atoi(c.Query("offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
