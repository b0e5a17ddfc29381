package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/curateddiscoveries/backend/internal/models"
)

// MockEmailService records sent mail instead of talking to SMTP.
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendVerificationEmail(user *models.User, profile *models.Profile, token string) error {
	args := m.Called(user, profile, token)
	return args.Error(0)
}

func (m *MockEmailService) SendWelcomeEmail(user *models.User, profile *models.Profile) error {
	args := m.Called(user, profile)
	return args.Error(0)
}

func (m *MockEmailService) SendEmail(to, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}
