package auth

import (
	"context"
	"errors"
	"fmt"

	"bookreview/internal/user"
)

// ErrInvalidCredentials covers both an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Session is what a successful signup or login hands back to the client.
type Session struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

type Service struct {
	users  UserStore
	tokens TokenIssuer
}

func NewService(users UserStore, tokens TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

// Signup creates the account and logs it in straight away.
func (s *Service) Signup(ctx context.Context, username, email, password string) (Session, error) {
	u, err := s.users.CreateUser(ctx, username, email, password)
	if err != nil {
		return Session{}, err
	}
	return s.issue(u)
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return Session{}, err
	}
	if u == nil || !user.VerifyPassword(password, u.PasswordHash) {
		return Session{}, ErrInvalidCredentials
	}
	return s.issue(*u)
}

func (s *Service) issue(u user.User) (Session, error) {
	token, err := s.tokens.Issue(u.ID, u.Username, u.Email)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{Token: token, User: u}, nil
}
