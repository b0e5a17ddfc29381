package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/curateddiscoveries/backend/internal/service"
	"github.com/curateddiscoveries/backend/internal/types"
)

// CurationHandler serves curation CRUD and item management.
type CurationHandler struct {
	curations *service.CurationService
	social    *service.SocialService
}

func NewCurationHandler(curations *service.CurationService, social *service.SocialService) *CurationHandler {
	return &CurationHandler{curations: curations, social: social}
}

// List returns a feed page. Filters: user_id, tag, limit, offset.
func (h *CurationHandler) List(c *gin.Context) {
	opts := service.ListOptions{Tag: c.Query("tag")}
	opts.Limit, opts.Offset = pagination(c)

	if raw := c.Query("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}
		opts.UserID = &userID
	}

	summaries, err := h.curations.List(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"curations": summaries})
}

// Get returns one curation with its items, tags, counters and the caller's
// own like/save flags. Anonymous callers get false flags, never an error.
func (h *CurationHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	summary, err := h.curations.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	userID := currentUserID(c)
	isLiked, err := h.social.IsLiked(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	isSaved, err := h.social.IsSaved(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"curation": summary,
		"is_liked": isLiked,
		"is_saved": isSaved,
	})
}

func (h *CurationHandler) Create(c *gin.Context) {
	var req types.CreateCurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	curation, err := h.curations.Create(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, curation)
}

func (h *CurationHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req types.UpdateCurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	curation, err := h.curations.Update(c.Request.Context(), currentUserID(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, curation)
}

func (h *CurationHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.curations.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CurationHandler) AddItem(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req types.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.curations.AddItem(c.Request.Context(), currentUserID(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *CurationHandler) UpdateItem(c *gin.Context) {
	itemID, ok := pathUUID(c, "itemID")
	if !ok {
		return
	}

	var req types.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.curations.UpdateItem(c.Request.Context(), currentUserID(c), itemID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *CurationHandler) DeleteItem(c *gin.Context) {
	itemID, ok := pathUUID(c, "itemID")
	if !ok {
		return
	}

	if err := h.curations.DeleteItem(c.Request.Context(), currentUserID(c), itemID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
