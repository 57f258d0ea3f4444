package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/patrol/internal/models"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func createSignedToken(t *testing.T, secret string, claims *Claims) string {
	t.Helper()
	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tokenStr
}

func validClaims(caller models.Caller) *Claims {
	now := time.Now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   caller.AccountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		AccountID: caller.AccountID.String(),
		Role:      string(caller.Role.Kind),
		TenantID:  caller.Role.TenantID.String(),
	}
}

func TestNewTokenIssuer(t *testing.T) {
	t.Run("short secret", func(t *testing.T) {
		issuer, err := NewTokenIssuer("short", time.Hour)
		require.Error(t, err)
		require.Nil(t, issuer)
	})

	t.Run("zero ttl", func(t *testing.T) {
		issuer, err := NewTokenIssuer(testSecret, 0)
		require.Error(t, err)
		require.Nil(t, issuer)
	})

	t.Run("valid", func(t *testing.T) {
		issuer, err := NewTokenIssuer(testSecret, time.Hour)
		require.NoError(t, err)
		require.NotNil(t, issuer)
	})
}

func TestIssueAndVerify(t *testing.T) {
	issuer, err := NewTokenIssuer(testSecret, time.Hour)
	require.NoError(t, err)
	verifier, err := NewTokenVerifier(testSecret)
	require.NoError(t, err)

	tenantID := uuid.New()
	tests := []struct {
		name   string
		caller models.Caller
	}{
		{name: "superadmin", caller: models.Caller{AccountID: uuid.New(), Role: models.SuperadminRole()}},
		{name: "client", caller: models.Caller{AccountID: uuid.New(), Role: models.ClientRole(tenantID)}},
		{name: "admin", caller: models.Caller{AccountID: uuid.New(), Role: models.AdminRole(tenantID)}},
		{name: "guard", caller: models.Caller{AccountID: uuid.New(), Role: models.GuardRole(tenantID)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, expires, err := issuer.Issue(tt.caller)
			require.NoError(t, err)
			require.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

			caller, err := verifier.Verify(token)
			require.NoError(t, err)
			require.Equal(t, tt.caller, caller)
		})
	}
}

func TestVerify_Rejects(t *testing.T) {
	verifier, err := NewTokenVerifier(testSecret)
	require.NoError(t, err)

	guard := models.Caller{AccountID: uuid.New(), Role: models.GuardRole(uuid.New())}

	expired := validClaims(guard)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	noExpiry := validClaims(guard)
	noExpiry.ExpiresAt = nil

	wrongIssuer := validClaims(guard)
	wrongIssuer.Issuer = "someone-else"

	badRole := validClaims(guard)
	badRole.Role = "intruder"

	badTenant := validClaims(guard)
	badTenant.TenantID = "not-a-uuid"

	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	es256, err := jwt.NewWithClaims(jwt.SigningMethodES256, validClaims(guard)).SignedString(ecKey)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "expired", token: createSignedToken(t, testSecret, expired)},
		{name: "no expiry", token: createSignedToken(t, testSecret, noExpiry)},
		{name: "wrong issuer", token: createSignedToken(t, testSecret, wrongIssuer)},
		{name: "wrong secret", token: createSignedToken(t, "ffffffffffffffffffffffffffffffff", validClaims(guard))},
		{name: "wrong algorithm", token: es256},
		{name: "unknown role", token: createSignedToken(t, testSecret, badRole)},
		{name: "scoped role without tenant", token: createSignedToken(t, testSecret, badTenant)},
		{name: "malformed", token: "invalid.token.string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(tt.token)
			require.Error(t, err)
		})
	}
}

func TestMiddleware(t *testing.T) {
	verifier, err := NewTokenVerifier(testSecret)
	require.NoError(t, err)

	guard := models.Caller{AccountID: uuid.New(), Role: models.GuardRole(uuid.New())}

	var seen models.Caller
	handler := verifier.Middleware("/health")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = CallerFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantCaller bool
	}{
		{name: "public path", path: "/health", wantStatus: http.StatusNoContent},
		{name: "missing header", path: "/api/assignment", wantStatus: http.StatusUnauthorized},
		{name: "not bearer", path: "/api/assignment", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", path: "/api/assignment", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{
			name:       "valid token",
			path:       "/api/assignment",
			header:     fmt.Sprintf("Bearer %s", createSignedToken(t, testSecret, validClaims(guard))),
			wantStatus: http.StatusNoContent,
			wantCaller: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = models.Caller{}

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCaller {
				require.Equal(t, guard, seen)
			} else {
				require.Equal(t, models.Caller{}, seen)
			}
		})
	}
}

func TestCallerFromContext(t *testing.T) {
	_, ok := CallerFromContext(context.Background())
	require.False(t, ok)

	caller := models.Caller{AccountID: uuid.New(), Role: models.SuperadminRole()}
	got, ok := CallerFromContext(WithCaller(context.Background(), caller))
	require.True(t, ok)
	require.Equal(t, caller, got)
}
