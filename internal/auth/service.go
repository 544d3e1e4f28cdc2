// Package auth resolves the acting user for audit stamps and access checks.
package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/atlas-erp/atlas/internal/shared"
	"github.com/atlas-erp/atlas/internal/users"
)

// Service wraps authentication business rules.
type Service struct {
	users users.Repository
}

// NewService constructs a new Service.
func NewService(repo users.Repository) *Service {
	return &Service{users: repo}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*users.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}
