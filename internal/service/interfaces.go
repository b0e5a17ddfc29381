package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/curateddiscoveries/backend/internal/models"
	"github.com/curateddiscoveries/backend/internal/types"
)

// IAuthService is what handlers and middleware need from the auth service.
type IAuthService interface {
	Register(ctx context.Context, email, password, fullName, username string) (*models.User, *models.Profile, string, error)
	Login(ctx context.Context, email, password string) (*models.User, *models.Profile, string, error)
	Logout(ctx context.Context, rawToken string) error
	VerifyEmail(ctx context.Context, token string) (*models.User, error)
	ValidateToken(ctx context.Context, tokenString string) (*types.TokenClaims, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// IProfileService is the profile surface used by handlers.
type IProfileService interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
	Update(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*models.Profile, error)
	Followers(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Profile, error)
	Following(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Profile, error)
}

// IEmailService sends transactional mail.
type IEmailService interface {
	SendVerificationEmail(user *models.User, profile *models.Profile, token string) error
	SendWelcomeEmail(user *models.User, profile *models.Profile) error
	SendEmail(to, subject, body string) error
}

var (
	_ IAuthService    = (*AuthService)(nil)
	_ IProfileService = (*ProfileService)(nil)
	_ IEmailService   = (*EmailService)(nil)
)
