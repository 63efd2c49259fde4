package auth

import (
	"context"

	"bookreview/internal/user"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=auth

type UserStore interface {
	CreateUser(ctx context.Context, username, email, password string) (user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
}

type TokenIssuer interface {
	Issue(userID int64, username, email string) (string, error)
}
