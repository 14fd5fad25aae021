package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"booking-backend/models"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type CredentialStore interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type AuthService struct {
	Users CredentialStore
}

func NewAuthService(users CredentialStore) *AuthService {
	return &AuthService{Users: users}
}

// Authenticate checks the password against the stored bcrypt hash. Unknown
// emails and wrong passwords both return ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, validationError("email and password are required")
	}

	u, err := s.Users.FindUserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
