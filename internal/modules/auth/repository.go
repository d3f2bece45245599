package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Credential is a stored login. Passwords are kept only as bcrypt hashes.
type Credential struct {
	Username     string
	Name         string
	PasswordHash string
}

// Repository looks up credentials by username.
type Repository interface {
	GetByUsername(ctx context.Context, username string) (*Credential, error)
}

// User is a plaintext seed entry hashed by NewStaticRepository.
type User struct {
	Username string
	Password string
	Name     string
}

// DemoUsers are the shop's built-in logins.
func DemoUsers() []User {
	return []User{
		{Username: "admin", Password: "admin123", Name: "Administrator"},
		{Username: "kasir", Password: "kasir123", Name: "Kasir"},
	}
}

type staticRepo struct {
	creds map[string]*Credential
}

// NewStaticRepository hashes users with the given bcrypt cost and serves them
// from memory.
func NewStaticRepository(users []User, cost int) (Repository, error) {
	r := &staticRepo{creds: make(map[string]*Credential, len(users))}
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", u.Username, err)
		}
		r.creds[u.Username] = &Credential{Username: u.Username, Name: u.Name, PasswordHash: string(hash)}
	}
	return r, nil
}

func (r *staticRepo) GetByUsername(ctx context.Context, username string) (*Credential, error) {
	c, ok := r.creds[username]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return c, nil
}
