package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/curateddiscoveries/backend/internal/models"
)

// SessionResponse is the payload of GET /session and of login/register.
// Profile is null while the caller has an identity but no profile row yet;
// clients key their "profile loading" state off that.
type SessionResponse struct {
	Token   string          `json:"token,omitempty"`
	User    *models.User    `json:"user"`
	Profile *models.Profile `json:"profile"`
}

// UserStats is the counter block shown on a profile page.
type UserStats struct {
	Followers int64 `json:"followers_count"`
	Following int64 `json:"following_count"`
	Curations int64 `json:"curations_count"`
	Likes     int64 `json:"likes_count"`
}

// ShareResult tells the client what to do with a recorded share: open the
// URL in a new context ("redirect") or copy it to the clipboard ("copy").
type ShareResult struct {
	Platform string `json:"platform"`
	Method   string `json:"method"`
	URL      string `json:"url"`
}

// CommentWithAuthor joins a comment with the author fields a list view needs.
type CommentWithAuthor struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url"`
}

// CurationSummary is a feed row: the curation plus its display counters.
type CurationSummary struct {
	models.Curation
	LikesCount    int64 `json:"likes_count"`
	CommentsCount int64 `json:"comments_count"`
}
