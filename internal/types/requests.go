package types

// RegisterRequest is the sign-up payload. Field shapes are re-validated by
// the auth service after normalization; the binding tags reject the obvious
// garbage before a handler runs.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	FullName string `json:"full_name" binding:"required,max=100"`
	Username string `json:"username" binding:"required,min=3,max=30"`
}

// LoginRequest is the sign-in payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest updates the caller's profile. Pointer fields
// distinguish "leave alone" from "set empty".
type UpdateProfileRequest struct {
	Username  string  `json:"username"`
	FullName  *string `json:"full_name"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
	CoverURL  *string `json:"cover_url"`
	Website   *string `json:"website"`
}

// CreateCurationRequest creates a curation, optionally with tags.
type CreateCurationRequest struct {
	Title       string   `json:"title" binding:"required,max=255"`
	Description string   `json:"description" binding:"max=2000"`
	ImageURL    string   `json:"image_url"`
	Tags        []string `json:"tags"`
}

// UpdateCurationRequest updates a curation's own fields; empty strings on
// pointer fields clear them.
type UpdateCurationRequest struct {
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	ImageURL    *string  `json:"image_url"`
	Tags        []string `json:"tags"`
}

// AddItemRequest appends one item to a curation.
type AddItemRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description" binding:"max=2000"`
	ExternalURL string `json:"external_url"`
	ImageURL    string `json:"image_url"`
}

// UpdateItemRequest edits an item in place; position is not editable here.
type UpdateItemRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	ExternalURL *string `json:"external_url"`
	ImageURL    *string `json:"image_url"`
}

// CommentRequest carries comment text for add and update.
type CommentRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// ShareRequest names the platform a curation is shared to.
type ShareRequest struct {
	Platform string `json:"platform" binding:"required"`
}
