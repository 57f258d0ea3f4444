package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/patrol/internal/models"
)

// Sentinel errors for account store operations
var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountAlreadyExists = errors.New("account already exists")
	ErrClientAlreadyExists  = errors.New("tenant already has a client account")
)

// AccountFilter restricts ListAccounts.
type AccountFilter struct {
	// TenantID limits results to one tenant when set.
	TenantID *uuid.UUID

	// Kind limits results to accounts resolving to this role when set.
	Kind models.RoleKind
}

// Matches returns true if the account passes the filter.
func (f AccountFilter) Matches(a *models.Account) bool {
	if f.TenantID != nil && (a.TenantID == nil || *a.TenantID != *f.TenantID) {
		return false
	}
	if f.Kind != "" && models.ResolveRole(a).Kind != f.Kind {
		return false
	}
	return true
}

// AccountStore defines account storage operations.
type AccountStore interface {
	// CreateAccount creates a new account.
	// Returns ErrAccountAlreadyExists if the ID or username is taken and
	// ErrClientAlreadyExists if the tenant already has a client account.
	CreateAccount(ctx context.Context, account *models.Account) error

	// GetAccount retrieves an account by ID.
	// Returns ErrAccountNotFound if the account doesn't exist.
	GetAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error)

	// GetAccountByUsername retrieves an account by username.
	// Returns ErrAccountNotFound if the account doesn't exist.
	GetAccountByUsername(ctx context.Context, username string) (*models.Account, error)

	// UpdateAccount updates names, username and password hash of an account.
	// Role flags and tenant are immutable.
	UpdateAccount(ctx context.Context, account *models.Account) error

	// DeleteAccount deletes an account with its assignment, runs and incidents.
	// Returns ErrAccountNotFound if the account doesn't exist.
	DeleteAccount(ctx context.Context, accountID uuid.UUID) error

	// ListAccounts returns accounts matching the filter ordered by username.
	ListAccounts(ctx context.Context, filter AccountFilter) ([]*models.Account, error)
}
