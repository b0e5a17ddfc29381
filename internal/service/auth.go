package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/curateddiscoveries/backend/internal/models"
	"github.com/curateddiscoveries/backend/internal/session"
	"github.com/curateddiscoveries/backend/internal/types"
)

const (
	tokenTTL          = 24 * time.Hour
	verificationTTL   = 24 * time.Hour
	denylistKeyPrefix = "auth:denylist:"
	minPasswordLen    = 6
	maxPasswordLen    = 72 // bcrypt input cap
)

var (
	usernameRe = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// AuthService owns sign-up, sign-in, sign-out and token validation.
type AuthService struct {
	db        *gorm.DB
	jwtSecret string
	rdb       *redis.Client // optional: token denylist
	bus       *session.Bus  // optional: auth event fan-out
	email     IEmailService // optional: verification mail
}

func NewAuthService(db *gorm.DB, jwtSecret string, rdb *redis.Client, bus *session.Bus, email IEmailService) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: jwtSecret,
		rdb:       rdb,
		bus:       bus,
		email:     email,
	}
}

// NormalizeEmail trims and lowercases an address. Every auth entry point
// normalizes before touching the database.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeUsername trims and lowercases a username.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func validateEmail(email string) error {
	if email == "" || !emailRe.MatchString(email) {
		return fmt.Errorf("%w: malformed email address", ErrValidation)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return fmt.Errorf("%w: password must be between %d and %d characters", ErrValidation, minPasswordLen, maxPasswordLen)
	}
	return nil
}

func validateUsername(username string) error {
	if !usernameRe.MatchString(username) {
		return fmt.Errorf("%w: username must be 3-30 characters of lowercase letters, digits or underscores", ErrValidation)
	}
	return nil
}

// Register creates the credential row and the profile row in one
// transaction, so a failed profile insert can never leave an orphaned
// identity behind. Returns the new user, profile and a signed access token.
func (s *AuthService) Register(ctx context.Context, email, password, fullName, username string) (*models.User, *models.Profile, string, error) {
	email = NormalizeEmail(email)
	username = NormalizeUsername(username)

	if err := validateEmail(email); err != nil {
		return nil, nil, "", err
	}
	if err := validatePassword(password); err != nil {
		return nil, nil, "", err
	}
	if err := validateUsername(username); err != nil {
		return nil, nil, "", err
	}
	if strings.TrimSpace(fullName) == "" {
		return nil, nil, "", fmt.Errorf("%w: name is required", ErrValidation)
	}

	// Pre-flight uniqueness reads give friendly errors; the unique indexes
	// remain the real authority under races.
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, nil, "", err
	}
	if count > 0 {
		return nil, nil, "", fmt.Errorf("%w: email already registered", ErrDuplicate)
	}
	if err := s.db.WithContext(ctx).Model(&models.Profile{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, nil, "", err
	}
	if count > 0 {
		return nil, nil, "", fmt.Errorf("%w: username already taken", ErrDuplicate)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, "", err
	}

	user := &models.User{Email: email, PasswordHash: string(hashed)}
	profile := &models.Profile{Username: username, FullName: strings.TrimSpace(fullName)}
	verification := &models.EmailVerificationToken{
		Token:     strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", ""),
		ExpiresAt: time.Now().Add(verificationTTL),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		verification.UserID = user.ID
		return tx.Create(verification).Error
	})
	if err != nil {
		return nil, nil, "", mapDBError(err)
	}

	if s.email != nil {
		if err := s.email.SendVerificationEmail(user, profile, verification.Token); err != nil {
			// Sign-up already committed; the user can request another mail.
			log.Printf("failed to send verification email to %s: %v", user.Email, err)
		}
	}

	token, err := s.GenerateToken(user.ID, profile.Username)
	if err != nil {
		return nil, nil, "", err
	}
	return user, profile, token, nil
}

// Login authenticates a credential pair. Every rejection path returns the
// same opaque error so the response does not reveal which half was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *models.Profile, string, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, nil, "", err
	}
	if password == "" {
		return nil, nil, "", fmt.Errorf("%w: password is required", ErrValidation)
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, "", ErrInvalidCredentials
		}
		return nil, nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, "", ErrInvalidCredentials
	}

	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		return nil, nil, "", err
	}

	token, err := s.GenerateToken(user.ID, profile.Username)
	if err != nil {
		return nil, nil, "", err
	}
	return &user, &profile, token, nil
}

// Logout denylists the presented token until its natural expiry and
// broadcasts a signed-out event so every instance drops its session snapshot.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	claims, err := s.ValidateToken(ctx, rawToken)
	if err != nil {
		return ErrUnauthenticated
	}

	if s.rdb != nil && claims.ID != "" {
		ttl := time.Until(claims.ExpiresAt.Time)
		if ttl > 0 {
			if err := s.rdb.Set(ctx, denylistKeyPrefix+claims.ID, "1", ttl).Err(); err != nil {
				return err
			}
		}
	}

	if s.bus != nil {
		if err := s.bus.Publish(ctx, session.Event{Type: session.EventSignedOut, UserID: claims.UserID}); err != nil {
			log.Printf("failed to publish signed-out event for %s: %v", claims.UserID, err)
		}
	}
	return nil
}

// VerifyEmail consumes a verification token and marks the profile verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", ErrValidation)
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.EmailVerificationToken
		if err := tx.Where("token = ?", token).First(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: unknown verification token", ErrNotFound)
			}
			return err
		}
		if time.Now().After(rec.ExpiresAt) {
			return fmt.Errorf("%w: verification token expired", ErrValidation)
		}
		if err := tx.Model(&models.Profile{}).Where("user_id = ?", rec.UserID).Update("email_verified", true).Error; err != nil {
			return err
		}
		if err := tx.First(&user, "id = ?", rec.UserID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.EmailVerificationToken{}, "token = ?", token).Error
	})
	if err != nil {
		return nil, err
	}

	if s.email != nil {
		var profile models.Profile
		if err := s.db.WithContext(ctx).Where("user_id = ?", user.ID).First(&profile).Error; err == nil {
			if err := s.email.SendWelcomeEmail(&user, &profile); err != nil {
				log.Printf("failed to send welcome email to %s: %v", user.Email, err)
			}
		}
	}

	if s.bus != nil {
		if err := s.bus.Publish(ctx, session.Event{Type: session.EventProfileUpdated, UserID: user.ID}); err != nil {
			log.Printf("failed to publish profile-updated event for %s: %v", user.ID, err)
		}
	}
	return &user, nil
}

// GenerateToken signs an HS256 access token carrying the user id and
// username plus a unique jti used for revocation.
func (s *AuthService) GenerateToken(userID uuid.UUID, username string) (string, error) {
	now := time.Now()
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
		UserID:   userID,
		Username: username,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken parses and verifies a token, rejecting denylisted ones.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthenticated
	}

	if s.rdb != nil && claims.ID != "" {
		n, err := s.rdb.Exists(ctx, denylistKeyPrefix+claims.ID).Result()
		if err == nil && n > 0 {
			return nil, ErrUnauthenticated
		}
	}
	return claims, nil
}

// GetUser loads a user row by id; used by the session manager.
func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// mapDBError folds constraint violations into the closed taxonomy.
func mapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: record already exists", ErrDuplicate)
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint") {
		return fmt.Errorf("%w: record already exists", ErrDuplicate)
	}
	return err
}
