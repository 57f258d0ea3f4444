package patrol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/patrol/internal/models"
)

func TestLogin(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	te := e.newTenant(t, "acme", "A")

	tests := []struct {
		name     string
		username string
		password string
		wantRole models.RoleKind
		wantKind Kind
	}{
		{name: "client", username: "acme-client", password: "secret", wantRole: models.RoleClient},
		{name: "admin", username: "acme-admin", password: "secret", wantRole: models.RoleAdmin},
		{name: "guard", username: "acme-guard", password: "secret", wantRole: models.RoleGuard},
		{name: "wrong password", username: "acme-guard", password: "nope", wantKind: KindDenied},
		{name: "unknown user", username: "nobody", password: "secret", wantKind: KindDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller, err := e.svc.Login(ctx, tt.username, tt.password)
			if tt.wantKind != "" {
				requireKind(t, err, tt.wantKind)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantRole, caller.Role.Kind)
			require.Equal(t, te.tenant.TenantID, caller.Role.TenantID)
		})
	}
}

func TestSeedSuperadmin_Idempotent(t *testing.T) {
	e := newEnv(t)

	created, err := e.svc.SeedSuperadmin(context.Background(), "root", "other-password")
	require.NoError(t, err)
	require.False(t, created)

	// The original password still works
	_, err = e.svc.Login(context.Background(), "root", "root-password")
	require.NoError(t, err)
}

func TestTenants(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	te := e.newTenant(t, "acme", "A")

	t.Run("duplicate client username", func(t *testing.T) {
		_, _, err := e.svc.CreateTenant(ctx, e.superadmin, TenantInput{
			Name:   "copycat",
			Client: AccountInput{Username: "acme-client", Password: "secret"},
		})
		requireKind(t, err, KindConflict)
	})

	t.Run("client can't manage tenants", func(t *testing.T) {
		_, err := e.svc.ListTenants(ctx, te.client)
		requireKind(t, err, KindDenied)
	})

	t.Run("rename", func(t *testing.T) {
		tenant, err := e.svc.UpdateTenant(ctx, e.superadmin, te.tenant.TenantID, "Acme Corp")
		require.NoError(t, err)
		require.Equal(t, "Acme Corp", tenant.Name)

		tenant, err = e.svc.GetTenant(ctx, e.superadmin, te.tenant.TenantID)
		require.NoError(t, err)
		require.Equal(t, "Acme Corp", tenant.Name)
	})

	t.Run("delete removes everything", func(t *testing.T) {
		_, err := e.svc.StartRun(ctx, te.guard)
		require.NoError(t, err)

		require.NoError(t, e.svc.DeleteTenant(ctx, e.superadmin, te.tenant.TenantID))

		_, err = e.svc.GetTenant(ctx, e.superadmin, te.tenant.TenantID)
		requireKind(t, err, KindNotFound)

		tenants, err := e.svc.ListTenants(ctx, e.superadmin)
		require.NoError(t, err)
		require.Empty(t, tenants)

		_, err = e.svc.Login(ctx, "acme-guard", "secret")
		requireKind(t, err, KindDenied)
	})
}

func TestRoutes(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := e.newTenant(t, "acme", "A", "B")
	b := e.newTenant(t, "globex", "X")

	t.Run("codes are unique across routes", func(t *testing.T) {
		_, err := e.svc.CreateRoute(ctx, e.superadmin, RouteInput{
			TenantID:    b.tenant.TenantID,
			Name:        "copy",
			Checkpoints: []CheckpointInput{{Name: "Gate", Code: "A", Order: 1}},
		})
		requireKind(t, err, KindConflict)
	})

	t.Run("order gaps are rejected", func(t *testing.T) {
		_, err := e.svc.CreateRoute(ctx, e.superadmin, RouteInput{
			TenantID:    b.tenant.TenantID,
			Name:        "gappy",
			Checkpoints: []CheckpointInput{{Name: "One", Code: "G1", Order: 1}, {Name: "Three", Code: "G3", Order: 3}},
		})
		requireKind(t, err, KindInvalid)
	})

	t.Run("checkpoints come back in order", func(t *testing.T) {
		route, err := e.svc.CreateRoute(ctx, e.superadmin, RouteInput{
			TenantID: b.tenant.TenantID,
			Name:     "backwards",
			Checkpoints: []CheckpointInput{
				{Name: "Two", Code: "R2", Order: 2},
				{Name: "One", Code: "R1", Order: 1},
			},
		})
		require.NoError(t, err)
		require.Equal(t, "R1", route.Checkpoints[0].Code)
		require.Equal(t, "R2", route.Checkpoints[1].Code)
	})

	t.Run("admins can't create routes", func(t *testing.T) {
		_, err := e.svc.CreateRoute(ctx, a.admin, RouteInput{
			TenantID:    a.tenant.TenantID,
			Name:        "mine",
			Checkpoints: []CheckpointInput{{Name: "M", Code: "M1", Order: 1}},
		})
		requireKind(t, err, KindDenied)
	})

	t.Run("listing is tenant scoped", func(t *testing.T) {
		routes, err := e.svc.ListRoutes(ctx, a.admin)
		require.NoError(t, err)
		require.Len(t, routes, 1)
		require.Equal(t, a.route.RouteID, routes[0].RouteID)

		all, err := e.svc.ListRoutes(ctx, e.superadmin)
		require.NoError(t, err)
		require.Len(t, all, 3)
	})
}

func TestAccounts(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := e.newTenant(t, "acme", "A")
	b := e.newTenant(t, "globex", "X")

	t.Run("list guards", func(t *testing.T) {
		guards, err := e.svc.ListGuards(ctx, a.admin, &b.tenant.TenantID)
		require.NoError(t, err, "scoped callers always see their own tenant")
		require.Len(t, guards, 1)
		require.Equal(t, a.guard.AccountID, guards[0].AccountID)

		all, err := e.svc.ListGuards(ctx, e.superadmin, nil)
		require.NoError(t, err)
		require.Len(t, all, 2)

		one, err := e.svc.ListGuards(ctx, e.superadmin, &b.tenant.TenantID)
		require.NoError(t, err)
		require.Len(t, one, 1)
	})

	t.Run("update guard", func(t *testing.T) {
		name, password := "Jo", "new-secret"
		guard, err := e.svc.UpdateGuard(ctx, a.admin, a.guard.AccountID, AccountUpdate{FirstName: &name, Password: &password})
		require.NoError(t, err)
		require.Equal(t, "Jo", guard.FirstName)

		_, err = e.svc.Login(ctx, "acme-guard", "new-secret")
		require.NoError(t, err)
		_, err = e.svc.Login(ctx, "acme-guard", "secret")
		requireKind(t, err, KindDenied)
	})

	t.Run("superadmin updates any guard", func(t *testing.T) {
		last := "Doe"
		guard, err := e.svc.UpdateGuard(ctx, e.superadmin, b.guard.AccountID, AccountUpdate{LastName: &last})
		require.NoError(t, err)
		require.Equal(t, "Doe", guard.LastName)
	})

	t.Run("guard endpoints don't reach admins", func(t *testing.T) {
		name := "x"
		_, err := e.svc.UpdateGuard(ctx, a.client, a.admin.AccountID, AccountUpdate{FirstName: &name})
		requireKind(t, err, KindNotFound)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := e.svc.CreateGuard(ctx, a.admin, AccountInput{Username: "globex-guard", Password: "secret"})
		requireKind(t, err, KindConflict)
	})

	t.Run("superadmin creates admin for a tenant", func(t *testing.T) {
		_, err := e.svc.CreateAdmin(ctx, e.superadmin, AccountInput{Username: "boss", Password: "secret"})
		requireKind(t, err, KindInvalid)

		admin, err := e.svc.CreateAdmin(ctx, e.superadmin, AccountInput{Username: "boss", Password: "secret", TenantID: &b.tenant.TenantID})
		require.NoError(t, err)
		require.Equal(t, b.tenant.TenantID, *admin.TenantID)

		admins, err := e.svc.ListAdmins(ctx, b.client, nil)
		require.NoError(t, err)
		require.Len(t, admins, 2)
	})

	t.Run("delete guard", func(t *testing.T) {
		_, err := e.svc.StartRun(ctx, b.guard)
		require.NoError(t, err)

		require.NoError(t, e.svc.DeleteGuard(ctx, b.admin, b.guard.AccountID))

		guards, err := e.svc.ListGuards(ctx, b.admin, nil)
		require.NoError(t, err)
		require.Empty(t, guards)

		err = e.svc.DeleteGuard(ctx, b.admin, b.guard.AccountID)
		requireKind(t, err, KindNotFound)
	})

	t.Run("check role", func(t *testing.T) {
		info, err := e.svc.CheckRole(ctx, a.admin)
		require.NoError(t, err)
		require.Equal(t, models.RoleAdmin, info.Role)
		require.Equal(t, "acme-admin", info.Username)
		require.Equal(t, a.tenant.TenantID, *info.TenantID)
	})
}
