package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/curateddiscoveries/backend/internal/models"
	"github.com/curateddiscoveries/backend/internal/types"
)

// MockAuthService is a testify mock of the auth service interface.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, email, password, fullName, username string) (*models.User, *models.Profile, string, error) {
	args := m.Called(ctx, email, password, fullName, username)
	user, _ := args.Get(0).(*models.User)
	profile, _ := args.Get(1).(*models.Profile)
	return user, profile, args.String(2), args.Error(3)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*models.User, *models.Profile, string, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(0).(*models.User)
	profile, _ := args.Get(1).(*models.Profile)
	return user, profile, args.String(2), args.Error(3)
}

func (m *MockAuthService) Logout(ctx context.Context, rawToken string) error {
	args := m.Called(ctx, rawToken)
	return args.Error(0)
}

func (m *MockAuthService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockAuthService) ValidateToken(ctx context.Context, tokenString string) (*types.TokenClaims, error) {
	args := m.Called(ctx, tokenString)
	claims, _ := args.Get(0).(*types.TokenClaims)
	return claims, args.Error(1)
}

func (m *MockAuthService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}
