package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/wolfeidau/patrol/internal/models"
)

const (
	// Issuer is the iss claim of every token minted by the service.
	Issuer = "patrol"

	minSecretLength = 32
)

// Claims are the JWT claims that carry a caller identity.
type Claims struct {
	jwt.RegisteredClaims
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
	TenantID  string `json:"tenant_id,omitempty"`
}

// TokenIssuer signs caller identities as HS256 tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates an issuer. The secret must be at least 32 bytes.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if len(secret) < minSecretLength {
		return nil, errors.New("token secret must be at least 32 bytes")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed token for the caller and its expiry.
func (i *TokenIssuer) Issue(caller models.Caller) (string, time.Time, error) {
	now := i.now()
	expires := now.Add(i.ttl)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   caller.AccountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        uuid.NewString(),
		},
		AccountID: caller.AccountID.String(),
		Role:      string(caller.Role.Kind),
	}
	if caller.Role.Scoped() {
		claims.TenantID = caller.Role.TenantID.String()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expires, nil
}
