package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/curateddiscoveries/backend/internal/service"
	"github.com/curateddiscoveries/backend/internal/session"
	"github.com/curateddiscoveries/backend/internal/types"
)

// AuthHandler exposes sign-up, sign-in, sign-out, email verification and the
// session bootstrap endpoint.
type AuthHandler struct {
	auth     service.IAuthService
	sessions *session.Manager
}

func NewAuthHandler(auth service.IAuthService, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, profile, token, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.FullName, req.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, types.SessionResponse{Token: token, User: user, Profile: profile})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, profile, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.SessionResponse{Token: token, User: user, Profile: profile})
}

// Logout revokes the presented token and drops the local session snapshot.
// The broadcast event takes care of every other instance.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := c.Get("token")
	raw, _ := token.(string)

	if err := h.auth.Logout(c.Request.Context(), raw); err != nil {
		respondError(c, err)
		return
	}
	h.sessions.Invalidate(currentUserID(c))

	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

// Session returns the caller's cached session snapshot. The profile field is
// null when the identity exists but the profile row does not, which clients
// treat as "profile still loading".
func (h *AuthHandler) Session(c *gin.Context) {
	snap, err := h.sessions.Resolve(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.SessionResponse{User: snap.User, Profile: snap.Profile})
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	user, err := h.auth.VerifyEmail(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}
	h.sessions.Invalidate(user.ID)

	c.JSON(http.StatusOK, gin.H{"message": "email verified"})
}
