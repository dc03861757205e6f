package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lottoworks/luckydraw-backend/internal/config"
	"github.com/lottoworks/luckydraw-backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure AuthServiceImpl implements AuthService
var _ AuthService = (*AuthServiceImpl)(nil)

// AuthServiceImpl authenticates the single administrative operator. There is
// no user store; the operator's credentials come from configuration.
type AuthServiceImpl struct {
	adminEmail   string
	passwordHash string
	jwtSecret    string
	expiresIn    time.Duration
}

// NewAuthService creates a new AuthServiceImpl
func NewAuthService(cfg *config.Config) *AuthServiceImpl {
	return &AuthServiceImpl{
		adminEmail:   cfg.Admin.Email,
		passwordHash: cfg.Admin.PasswordHash,
		jwtSecret:    cfg.JWT.Secret,
		expiresIn:    time.Duration(cfg.JWT.ExpiresIn) * time.Second,
	}
}

// Login verifies the operator credentials and issues a signed JWT
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, error) {
	if email != s.adminEmail {
		return "", models.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		slog.Warn("Admin login rejected", "email", email)
		return "", models.ErrUnauthorized
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  email,
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  now.Add(s.expiresIn).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	slog.Info("Admin logged in", "email", email)
	return signed, nil
}
