package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

type claims struct {
	Name string `json:"name"`
	jwt.StandardClaims
}

type service struct {
	repo   Repository
	secret []byte
	ttl    time.Duration
}

// NewService creates a new auth service. Tokens are HS256-signed with secret
// and expire after ttl.
func NewService(repo Repository, secret string, ttl time.Duration) Service {
	return &service{repo: repo, secret: []byte(secret), ttl: ttl}
}

func (s *service) Authenticate(ctx context.Context, username, password string) (*Identity, bool) {
	cred, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, false
	}
	return &Identity{Username: cred.Username, Name: cred.Name}, true
}

func (s *service) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	id, ok := s.Authenticate(ctx, username, password)
	if !ok {
		return nil, ErrInvalidCredentials
	}

	expirationTime := time.Now().Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		Name: id.Name,
		StandardClaims: jwt.StandardClaims{
			Subject:   id.Username,
			ExpiresAt: expirationTime.Unix(),
		},
	})
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: tokenString, ExpiresAt: expirationTime, User: *id}, nil
}

func (s *service) Verify(tokenString string) (*Identity, error) {
	c := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if !token.Valid || c.Subject == "" {
		return nil, ErrUnauthorized
	}
	return &Identity{Username: c.Subject, Name: c.Name}, nil
}
