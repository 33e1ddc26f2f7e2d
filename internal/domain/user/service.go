// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/pkg/apperror"
	"github.com/your-org/storefront/internal/pkg/auth"
)

// ErrInvalidCredentials is returned for any failed login
var ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", apperror.ErrNotAuthenticated)

// Notifier sends account e-mails
type Notifier interface {
	SendWelcomeEmail(ctx context.Context, email, name string) error
}

// Service handles user business logic
type Service struct {
	repo            Repository
	config          *config.Config
	jwtManager      *auth.JWTManager
	passwordManager *auth.PasswordManager
	notifier        Notifier
	log             *logrus.Logger
}

// NewService creates a new user service
func NewService(repo Repository, notifier Notifier, cfg *config.Config, log *logrus.Logger) *Service {
	return &Service{
		repo:            repo,
		config:          cfg,
		jwtManager:      auth.NewJWTManager(cfg),
		passwordManager: auth.NewPasswordManager(cfg),
		notifier:        notifier,
		log:             log,
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SettingsRequest changes account settings; empty fields are left as they are
type SettingsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Register creates a new user and signs them in
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"first_name", req.FirstName},
		{"last_name", req.LastName},
		{"email", req.Email},
		{"password", req.Password},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, apperror.NewValidationError("all fields are required", missing...)
	}

	email, err := validEmail(req.Email)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.NewValidationError(err.Error(), "password")
	}

	now := time.Now().UTC()
	u := &User{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.FirstName) + " " + strings.TrimSpace(req.LastName),
		Email:       email,
		Password:    hashedPassword,
		LastLoginAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": u.ID}).Info("User registered")

	if s.notifier != nil {
		if err := s.notifier.SendWelcomeEmail(ctx, u.Email, u.Name); err != nil {
			s.log.WithError(err).WithField("user_id", u.ID).Warn("Failed to send welcome email")
		}
	}

	return s.authResponse(u)
}

// Login verifies credentials and issues tokens
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	u, err := s.repo.FindByEmail(ctx, NormalizeEmail(req.Email))
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := s.passwordManager.VerifyPassword(req.Password, u.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	u.LastLoginAt = &now
	if err := s.repo.Update(ctx, u); err != nil {
		s.log.WithError(err).WithField("user_id", u.ID).Warn("Failed to record last login")
	}

	return s.authResponse(u)
}

// RefreshToken issues a new token pair from a valid refresh token
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", apperror.ErrNotAuthenticated)
	}

	u, err := s.repo.FindByID(ctx, claims.UserID)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("user no longer exists: %w", apperror.ErrNotAuthenticated)
	}
	if err != nil {
		return nil, err
	}

	return s.authResponse(u)
}

// GetProfile returns the user's record
func (s *Service) GetProfile(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, apperror.ErrNotAuthenticated
	}
	return s.repo.FindByID(ctx, userID)
}

// UpdateSettings changes name, e-mail or password. A new e-mail must not
// belong to another account.
func (s *Service) UpdateSettings(ctx context.Context, userID string, req *SettingsRequest) (*User, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		u.Name = name
	}

	if strings.TrimSpace(req.Email) != "" {
		email, err := validEmail(req.Email)
		if err != nil {
			return nil, err
		}
		if email != u.Email {
			existing, err := s.repo.FindByEmail(ctx, email)
			switch {
			case err == nil && existing.ID != u.ID:
				return nil, apperror.Conflict("user with this email already exists")
			case err != nil && !errors.Is(err, apperror.ErrNotFound):
				return nil, err
			}
			u.Email = email
		}
	}

	if req.Password != "" {
		hashed, err := s.passwordManager.HashPassword(req.Password)
		if err != nil {
			return nil, apperror.NewValidationError(err.Error(), "password")
		}
		u.Password = hashed
	}

	u.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	s.log.WithField("user_id", u.ID).Info("User settings updated")
	return u, nil
}

func (s *Service) authResponse(u *User) (*AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(u.ID, u.Email, u.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		User:         u,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.JWT.AccessTokenExpiry.Seconds()),
	}, nil
}

func validEmail(raw string) (string, error) {
	email := NormalizeEmail(raw)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperror.NewValidationError("invalid email address", "email")
	}
	return email, nil
}
