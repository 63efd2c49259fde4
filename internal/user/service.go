package user

import (
	"context"
	"errors"

	"bookreview/internal/platform/crypto"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateUser registers a new identity. Username and email are compared
// exactly. The pre-check gives the common case a clean answer; the unique
// constraints catch concurrent signups and map to the same error.
func (s *Service) CreateUser(ctx context.Context, username, email, password string) (User, error) {
	exists, err := s.repo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return User{}, err
	}
	if exists {
		return User{}, ErrDuplicateIdentity
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return User{}, err
	}

	newUser := &User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, newUser); err != nil {
		return User{}, err
	}

	return *newUser, nil
}

// FindByEmail returns nil, nil when no user has that email.
func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (User, error) {
	return s.repo.GetByID(ctx, id)
}

func VerifyPassword(plain, hash string) bool {
	return crypto.VerifyPassword(hash, plain)
}
