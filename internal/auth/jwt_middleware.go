package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wolfeidau/patrol/internal/models"
)

type contextKey int

const (
	callerContextKey contextKey = iota
)

// WithCaller returns a copy of ctx carrying the caller.
func WithCaller(ctx context.Context, caller models.Caller) context.Context {
	return context.WithValue(ctx, callerContextKey, caller)
}

// CallerFromContext returns the authenticated caller of the request.
func CallerFromContext(ctx context.Context) (models.Caller, bool) {
	caller, ok := ctx.Value(callerContextKey).(models.Caller)
	return caller, ok
}

// Middleware returns an HTTP middleware that verifies bearer tokens and stores the
// caller in the request context. Requests to publicPaths pass through untouched.
func (v *TokenVerifier) Middleware(publicPaths ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(publicPaths, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			logger := zerolog.Ctx(r.Context())

			tokenString := extractBearerToken(r)
			if tokenString == "" {
				logger.Warn().Msg("Missing Authorization header")
				unauthorized(w, "missing bearer token")
				return
			}

			caller, err := v.Verify(tokenString)
			if err != nil {
				logger.Warn().Err(err).Msg("Failed to verify token")
				unauthorized(w, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": "unauthenticated", "message": message})
}

// extractBearerToken extracts the JWT from the Authorization header.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return parts[1]
}
