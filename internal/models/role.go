package models

import (
	"fmt"

	"github.com/google/uuid"
)

// RoleKind is the classification of a caller.
type RoleKind string

const (
	RoleSuperadmin RoleKind = "superadmin"
	RoleAdmin      RoleKind = "admin"
	RoleClient     RoleKind = "client"
	RoleGuard      RoleKind = "guard"
)

// ParseRoleKind converts a string into a RoleKind.
func ParseRoleKind(s string) (RoleKind, error) {
	switch RoleKind(s) {
	case RoleSuperadmin, RoleAdmin, RoleClient, RoleGuard:
		return RoleKind(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Role is Superadmin | Admin(tenant) | Client(tenant) | Guard(tenant).
// TenantID is uuid.Nil for superadmins.
type Role struct {
	Kind     RoleKind
	TenantID uuid.UUID
}

func SuperadminRole() Role { return Role{Kind: RoleSuperadmin} }
func AdminRole(tenantID uuid.UUID) Role { return Role{Kind: RoleAdmin, TenantID: tenantID} }
func ClientRole(tenantID uuid.UUID) Role { return Role{Kind: RoleClient, TenantID: tenantID} }
func GuardRole(tenantID uuid.UUID) Role { return Role{Kind: RoleGuard, TenantID: tenantID} }

// Scoped returns true for roles bound to a tenant.
func (r Role) Scoped() bool {
	return r.Kind != RoleSuperadmin
}

func (r Role) String() string {
	if !r.Scoped() {
		return string(r.Kind)
	}
	return fmt.Sprintf("%s(%s)", r.Kind, r.TenantID)
}

// ResolveRole derives the role of an account from its flags.
// Precedence is superadmin, client, admin, guard.
func ResolveRole(a *Account) Role {
	if a.IsSuperadmin {
		return SuperadminRole()
	}

	var tenantID uuid.UUID
	if a.TenantID != nil {
		tenantID = *a.TenantID
	}

	switch {
	case a.IsClient:
		return ClientRole(tenantID)
	case a.IsAdmin:
		return AdminRole(tenantID)
	default:
		return GuardRole(tenantID)
	}
}

// Caller is the pre-authenticated identity attached to every inbound operation.
type Caller struct {
	AccountID uuid.UUID
	Role      Role
}

// CallerFor builds the caller identity for an account.
func CallerFor(a *Account) Caller {
	return Caller{AccountID: a.AccountID, Role: ResolveRole(a)}
}
