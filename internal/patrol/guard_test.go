package patrol

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/patrol/internal/models"
	"github.com/wolfeidau/patrol/internal/store"
)

func TestHasCapability(t *testing.T) {
	tests := []struct {
		kind       models.RoleKind
		capability Capability
		want       bool
	}{
		{models.RoleSuperadmin, CapTenantsFreeze, true},
		{models.RoleSuperadmin, CapRoutesCreate, true},
		{models.RoleSuperadmin, CapPatrolOperate, false},
		{models.RoleSuperadmin, CapReportsRead, false},
		{models.RoleClient, CapAdminsManage, true},
		{models.RoleClient, CapReportsRead, true},
		{models.RoleClient, CapTenantsFreeze, false},
		{models.RoleAdmin, CapGuardsManage, true},
		{models.RoleAdmin, CapAdminsManage, false},
		{models.RoleAdmin, CapRoutesCreate, false},
		{models.RoleGuard, CapPatrolOperate, true},
		{models.RoleGuard, CapRoleCheck, true},
		{models.RoleGuard, CapReportsRead, false},
		{models.RoleKind("intruder"), CapRoleCheck, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+string(tt.capability), func(t *testing.T) {
			require.Equal(t, tt.want, HasCapability(tt.kind, tt.capability))
		})
	}
}

func TestAuthorize(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	te := e.newTenant(t, "acme", "A")
	other := e.newTenant(t, "globex", "X")

	authorize := func(caller models.Caller, capability Capability, target *uuid.UUID) error {
		return e.svc.store.InReadTx(ctx, func(ctx context.Context, tx store.Tx) error {
			return Authorize(ctx, tx, caller, capability, target)
		})
	}

	t.Run("same tenant", func(t *testing.T) {
		require.NoError(t, authorize(te.admin, CapGuardsManage, &te.tenant.TenantID))
	})

	t.Run("superadmin crosses tenants", func(t *testing.T) {
		require.NoError(t, authorize(e.superadmin, CapRoutesCreate, &other.tenant.TenantID))
	})

	t.Run("cross tenant", func(t *testing.T) {
		requireKind(t, authorize(te.admin, CapGuardsManage, &other.tenant.TenantID), KindDenied)
	})

	t.Run("forged role is rejected", func(t *testing.T) {
		forged := te.guard
		forged.Role = models.AdminRole(te.tenant.TenantID)
		requireKind(t, authorize(forged, CapGuardsManage, nil), KindDenied)
	})

	t.Run("unknown account", func(t *testing.T) {
		ghost := models.Caller{AccountID: uuid.New(), Role: models.SuperadminRole()}
		requireKind(t, authorize(ghost, CapTenantsManage, nil), KindDenied)
	})

	t.Run("deleted account", func(t *testing.T) {
		require.NoError(t, e.svc.DeleteGuard(ctx, te.admin, te.guard.AccountID))
		requireKind(t, authorize(te.guard, CapPatrolOperate, nil), KindDenied)
	})

	t.Run("deleted tenant", func(t *testing.T) {
		require.NoError(t, e.svc.DeleteTenant(ctx, e.superadmin, other.tenant.TenantID))
		requireKind(t, authorize(other.client, CapRoleCheck, nil), KindDenied)
	})
}
