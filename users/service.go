// Package users manages user accounts.
package users

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/krishkalaria12/snap-vault/apperr"
	"github.com/krishkalaria12/snap-vault/database"
	"github.com/krishkalaria12/snap-vault/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost        = 10
	MinPasswordLength = 6
)

type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(hashed), err
}

// NormalizeEmail trims and lower-cases an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create registers a new account. The stored password is a bcrypt hash.
func (s *Service) Create(ctx context.Context, email, password string) (*models.User, error) {
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.Validation("email must be a valid address")
	}
	if len(password) < MinPasswordLength {
		return nil, apperr.Validation("password must be at least %d characters", MinPasswordLength)
	}

	existing, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("Failed to look up user", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("Email already exists")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, apperr.Internal("Failed to hash password", err)
	}

	user := &models.User{Email: email, Password: hash}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, apperr.Conflict("Email already exists")
		}
		return nil, apperr.Internal("Failed to create user", err)
	}
	return user, nil
}

// FindOne returns nil without error when no account has that email.
func (s *Service) FindOne(ctx context.Context, email string) (*models.User, error) {
	user, err := s.store.FindUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, apperr.Internal("Failed to look up user", err)
	}
	return user, nil
}
