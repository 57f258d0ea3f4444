package models

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a login identity in the system.
// The role is not stored directly, it is derived from the flags with ResolveRole.
type Account struct {
	AccountID uuid.UUID // UUIDv7
	Username  string
	FirstName string
	LastName  string

	// PasswordHash is a bcrypt hash, empty for accounts that cannot log in.
	PasswordHash string

	// Role flags
	IsSuperadmin bool       // global, no tenant
	IsClient     bool       // the tenant's own login, bound 1:1 to TenantID
	IsAdmin      bool       // tenant admin when true, guard when false
	TenantID     *uuid.UUID // nil only for superadmins

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Role returns the tagged role of the account.
func (a *Account) Role() Role {
	return ResolveRole(a)
}

// IsGuard returns true if the account resolves to the guard role.
func (a *Account) IsGuard() bool {
	return a.Role().Kind == RoleGuard
}
