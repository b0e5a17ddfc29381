package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/curateddiscoveries/backend/internal/service"
	"github.com/curateddiscoveries/backend/internal/types"
)

// SocialHandler serves likes, saves, follows, comments and shares. Responses
// to counter-mutating calls carry the authoritative new count.
type SocialHandler struct {
	social *service.SocialService
}

func NewSocialHandler(social *service.SocialService) *SocialHandler {
	return &SocialHandler{social: social}
}

func (h *SocialHandler) Like(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	count, err := h.social.Like(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"likes_count": count, "is_liked": true})
}

func (h *SocialHandler) Unlike(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	count, err := h.social.Unlike(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"likes_count": count, "is_liked": false})
}

func (h *SocialHandler) Save(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.social.Save(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_saved": true})
}

func (h *SocialHandler) Unsave(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.social.Unsave(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_saved": false})
}

func (h *SocialHandler) Follow(c *gin.Context) {
	targetID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	count, err := h.social.Follow(c.Request.Context(), currentUserID(c), targetID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"followers_count": count, "is_following": true})
}

func (h *SocialHandler) Unfollow(c *gin.Context) {
	targetID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	count, err := h.social.Unfollow(c.Request.Context(), currentUserID(c), targetID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"followers_count": count, "is_following": false})
}

func (h *SocialHandler) ListComments(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	limit, offset := pagination(c)
	comments, err := h.social.GetComments(c.Request.Context(), id, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (h *SocialHandler) AddComment(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req types.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	comment, count, err := h.social.AddComment(c.Request.Context(), currentUserID(c), id, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment, "comments_count": count})
}

func (h *SocialHandler) UpdateComment(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req types.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	comment, err := h.social.UpdateComment(c.Request.Context(), currentUserID(c), id, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *SocialHandler) DeleteComment(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	count, err := h.social.DeleteComment(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments_count": count})
}

func (h *SocialHandler) Share(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req types.ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.social.Share(c.Request.Context(), currentUserID(c), id, req.Platform)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
