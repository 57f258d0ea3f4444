package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/patrol/internal/models"
	"github.com/wolfeidau/patrol/internal/store"
)

// CreateAccount creates a new account in memory.
func (t *tx) CreateAccount(ctx context.Context, account *models.Account) error {
	if _, exists := t.accounts[account.AccountID]; exists {
		return store.ErrAccountAlreadyExists
	}

	for _, existing := range t.accounts {
		// Check for duplicate username
		if existing.Username == account.Username {
			return store.ErrAccountAlreadyExists
		}

		// Check for a second client login on the same tenant
		if account.IsClient && existing.IsClient &&
			account.TenantID != nil && existing.TenantID != nil &&
			*account.TenantID == *existing.TenantID {
			return store.ErrClientAlreadyExists
		}
	}

	if account.TenantID != nil {
		if _, exists := t.tenants[*account.TenantID]; !exists {
			return store.ErrTenantNotFound
		}
	}

	t.accounts[account.AccountID] = cloneValue(account)

	return nil
}

// GetAccount retrieves an account by ID.
func (t *tx) GetAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	account, exists := t.accounts[accountID]
	if !exists {
		return nil, store.ErrAccountNotFound
	}

	return cloneValue(account), nil
}

// GetAccountByUsername retrieves an account by username.
func (t *tx) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	for _, account := range t.accounts {
		if account.Username == username {
			return cloneValue(account), nil
		}
	}

	return nil, store.ErrAccountNotFound
}

// UpdateAccount updates the mutable fields of an account.
func (t *tx) UpdateAccount(ctx context.Context, account *models.Account) error {
	existing, exists := t.accounts[account.AccountID]
	if !exists {
		return store.ErrAccountNotFound
	}

	for id, other := range t.accounts {
		if id != account.AccountID && other.Username == account.Username {
			return store.ErrAccountAlreadyExists
		}
	}

	updated := cloneValue(existing)
	updated.Username = account.Username
	updated.FirstName = account.FirstName
	updated.LastName = account.LastName
	updated.PasswordHash = account.PasswordHash
	updated.UpdatedAt = time.Now()

	t.accounts[account.AccountID] = updated
	*account = *cloneValue(updated)

	return nil
}

// DeleteAccount deletes an account and everything it owns.
func (t *tx) DeleteAccount(ctx context.Context, accountID uuid.UUID) error {
	if _, exists := t.accounts[accountID]; !exists {
		return store.ErrAccountNotFound
	}

	t.deleteAccount(accountID)

	return nil
}

// ListAccounts returns accounts matching the filter ordered by username.
func (t *tx) ListAccounts(ctx context.Context, filter store.AccountFilter) ([]*models.Account, error) {
	var result []*models.Account
	for _, account := range t.accounts {
		if filter.Matches(account) {
			result = append(result, cloneValue(account))
		}
	}

	slices.SortFunc(result, func(a, b *models.Account) int {
		return strings.Compare(a.Username, b.Username)
	})

	return result, nil
}
