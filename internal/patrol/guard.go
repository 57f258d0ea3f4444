package patrol

import (
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"
	"github.com/wolfeidau/patrol/internal/models"
	"github.com/wolfeidau/patrol/internal/store"
)

// Capability represents an authorized action
type Capability string

const (
	CapTenantsManage Capability = "tenants:manage"
	CapTenantsFreeze Capability = "tenants:freeze"
	CapRoutesCreate  Capability = "routes:create"
	CapRoutesList    Capability = "routes:list"
	CapGuardsManage  Capability = "guards:manage"
	CapGuardsUpdate  Capability = "guards:update"
	CapAdminsManage  Capability = "admins:manage"
	CapReportsRead   Capability = "reports:read"
	CapPatrolOperate Capability = "patrol:operate"
	CapRoleCheck     Capability = "role:check"
)

// RoleCapabilities maps role kinds to allowed capabilities
var RoleCapabilities = map[models.RoleKind][]Capability{
	models.RoleSuperadmin: {
		CapTenantsManage,
		CapTenantsFreeze,
		CapRoutesCreate,
		CapRoutesList,
		CapGuardsUpdate,
		CapAdminsManage,
		CapRoleCheck,
	},
	models.RoleClient: {
		CapRoutesList,
		CapGuardsManage,
		CapGuardsUpdate,
		CapAdminsManage,
		CapReportsRead,
		CapRoleCheck,
	},
	models.RoleAdmin: {
		CapRoutesList,
		CapGuardsManage,
		CapGuardsUpdate,
		CapReportsRead,
		CapRoleCheck,
	},
	models.RoleGuard: {
		CapPatrolOperate,
		CapRoleCheck,
	},
}

// HasCapability checks if a role kind has a specific capability
func HasCapability(kind models.RoleKind, capability Capability) bool {
	caps, ok := RoleCapabilities[kind]
	if !ok {
		return false
	}
	return slices.Contains(caps, capability)
}

// Authorize is the tenant guard every inbound operation passes first. It checks the
// capability against the caller's role, rejects cross-tenant targets, and re-reads the
// caller's account and tenant inside tx so a deleted account or a frozen tenant takes
// effect on credentials that were issued before the change.
//
// target is the tenant the operation acts on, nil when the operation has no tenant
// target or acts on the caller's own tenant.
func Authorize(ctx context.Context, tx store.Tx, caller models.Caller, capability Capability, target *uuid.UUID) error {
	if !HasCapability(caller.Role.Kind, capability) {
		return newError(KindDenied, "%s requires %s", caller.Role.Kind, capability)
	}

	account, err := tx.GetAccount(ctx, caller.AccountID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return newError(KindDenied, "account no longer exists")
		}
		return translate(err)
	}

	if models.ResolveRole(account) != caller.Role {
		return newError(KindDenied, "role of account changed")
	}

	if !caller.Role.Scoped() {
		return nil
	}

	if target != nil && *target != caller.Role.TenantID {
		return newError(KindDenied, "cross-tenant access")
	}

	tenant, err := tx.GetTenant(ctx, caller.Role.TenantID)
	if err != nil {
		if errors.Is(err, store.ErrTenantNotFound) {
			return newError(KindDenied, "tenant no longer exists")
		}
		return translate(err)
	}

	if tenant.IsFrozen() {
		return newError(KindTenantFrozen, "tenant %s is frozen", tenant.Name)
	}

	return nil
}

// authorizeAccountTarget authorizes an operation on another account, using the
// target account's tenant as the tenant target. Superadmin accounts are only
// reachable by superadmins.
func authorizeAccountTarget(ctx context.Context, tx store.Tx, caller models.Caller, capability Capability, targetID uuid.UUID, want models.RoleKind) (*models.Account, error) {
	target, err := tx.GetAccount(ctx, targetID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			// Authorize first so unauthorized callers can't probe for IDs
			if authErr := Authorize(ctx, tx, caller, capability, nil); authErr != nil {
				return nil, authErr
			}
		}
		return nil, translate(err)
	}

	if err := Authorize(ctx, tx, caller, capability, target.TenantID); err != nil {
		return nil, err
	}

	if target.Role().Kind != want {
		return nil, newError(KindNotFound, "%s not found", want)
	}

	return target, nil
}
