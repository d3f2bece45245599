package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Identity is the authenticated cashier.
type Identity struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      Identity  `json:"user"`
}

// Service defines the interface for authentication-related business logic.
type Service interface {
	// Authenticate checks a username/password pair against the credential table.
	Authenticate(ctx context.Context, username, password string) (*Identity, bool)
	// Login authenticates and issues a signed session token.
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	// Verify parses a session token back into the identity it was issued for.
	Verify(token string) (*Identity, error)
}
