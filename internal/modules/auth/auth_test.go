package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T, ttl time.Duration) Service {
	t.Helper()
	repo, err := NewStaticRepository(DemoUsers(), bcrypt.MinCost)
	require.NoError(t, err)
	return NewService(repo, "test-secret", ttl)
}

func TestAuthenticate(t *testing.T) {
	s := newTestService(t, time.Hour)
	ctx := context.Background()

	id, ok := s.Authenticate(ctx, "kasir", "kasir123")
	require.True(t, ok)
	assert.Equal(t, &Identity{Username: "kasir", Name: "Kasir"}, id)

	_, ok = s.Authenticate(ctx, "kasir", "admin123")
	assert.False(t, ok)
	_, ok = s.Authenticate(ctx, "nobody", "x")
	assert.False(t, ok)
}

func TestLoginAndVerify(t *testing.T) {
	s := newTestService(t, time.Hour)

	res, err := s.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "Administrator", res.User.Name)

	id, err := s.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", id.Username)

	_, err = s.Login(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyRejectsForeignAndExpiredTokens(t *testing.T) {
	s := newTestService(t, time.Hour)
	res, err := s.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)

	repo, _ := NewStaticRepository(DemoUsers(), bcrypt.MinCost)
	other := NewService(repo, "other-secret", time.Hour)
	_, err = other.Verify(res.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	expired := newTestService(t, -time.Minute)
	res, err = expired.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	_, err = expired.Verify(res.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestMiddleware(t *testing.T) {
	s := newTestService(t, time.Hour)
	r := chi.NewRouter()
	NewHandler(s).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"username":"kasir","password":"kasir123"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var login LoginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&login))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var id Identity
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&id))
	assert.Equal(t, "kasir", id.Username)
}

func TestLoginHandlerBadCredentials(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(newTestService(t, time.Hour)).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"username":"kasir","password":"nope"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
