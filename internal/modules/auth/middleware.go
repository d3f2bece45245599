package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/georgemunganga/kelontong-pos/internal/pkg/telemetry"
)

type ctxKey struct{}

// FromContext returns the identity stored by Middleware.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(*Identity)
	return id, ok
}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	ctx = telemetry.WithCashier(ctx, id.Username)
	return context.WithValue(ctx, ctxKey{}, id)
}

// Middleware rejects requests without a valid "Authorization: Bearer" token.
func Middleware(s Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				respond(w, http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
				return
			}
			id, err := s.Verify(token)
			if err != nil {
				respond(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
