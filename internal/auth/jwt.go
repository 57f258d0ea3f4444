package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/wolfeidau/patrol/internal/models"
)

// TokenVerifier checks tokens minted by TokenIssuer.
type TokenVerifier struct {
	secret []byte
	opts   []jwt.ParserOption
}

// NewTokenVerifier creates a verifier sharing the issuer's secret.
func NewTokenVerifier(secret string) (*TokenVerifier, error) {
	if len(secret) < minSecretLength {
		return nil, errors.New("token secret must be at least 32 bytes")
	}

	return &TokenVerifier{
		secret: []byte(secret),
		opts: []jwt.ParserOption{
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(Issuer),
			jwt.WithExpirationRequired(),
		},
	}, nil
}

// Verify validates the token signature and expiry and returns the caller it carries.
// The caller is only a claim: the account and tenant are re-checked per operation.
func (v *TokenVerifier) Verify(tokenString string) (models.Caller, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, v.opts...)
	if err != nil {
		return models.Caller{}, err
	}

	return callerFromClaims(claims)
}

func callerFromClaims(claims *Claims) (models.Caller, error) {
	accountID, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return models.Caller{}, fmt.Errorf("invalid account_id claim: %w", err)
	}

	kind, err := models.ParseRoleKind(claims.Role)
	if err != nil {
		return models.Caller{}, fmt.Errorf("invalid role claim: %w", err)
	}

	role := models.Role{Kind: kind}
	if role.Scoped() {
		tenantID, err := uuid.Parse(claims.TenantID)
		if err != nil {
			return models.Caller{}, fmt.Errorf("invalid tenant_id claim: %w", err)
		}
		role.TenantID = tenantID
	}

	return models.Caller{AccountID: accountID, Role: role}, nil
}
