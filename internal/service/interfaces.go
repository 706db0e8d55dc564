package service

import (
	"context"

	"planup/internal/models/user"
	"planup/internal/session"
)

type UserRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *user.User) error
	GetByID(context.Context, string) (*user.User, error)
	GetByEmail(context.Context, string) (*user.User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type TokenIssuer interface {
	Generate(userID string) (string, error)
}

type SessionStore interface {
	Start(userID string) *session.Session
	GetOrStart(userID string) *session.Session
	End(userID string) bool
}
