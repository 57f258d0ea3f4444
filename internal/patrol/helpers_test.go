package patrol

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wolfeidau/patrol/internal/models"
	"github.com/wolfeidau/patrol/internal/store/memory"
)

// stepClock returns a time source that advances one second per call.
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

var testStart = time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)

type env struct {
	svc        *Service
	superadmin models.Caller
}

func newEnv(t *testing.T) *env {
	t.Helper()

	svc := NewService(memory.NewStore(),
		WithClock(stepClock(testStart)),
		WithPasswordCost(bcrypt.MinCost),
	)

	ctx := context.Background()
	created, err := svc.SeedSuperadmin(ctx, "root", "root-password")
	require.NoError(t, err)
	require.True(t, created)

	superadmin, err := svc.Login(ctx, "root", "root-password")
	require.NoError(t, err)
	require.Equal(t, models.RoleSuperadmin, superadmin.Role.Kind)

	return &env{svc: svc, superadmin: superadmin}
}

type tenantEnv struct {
	tenant *models.Tenant
	client models.Caller
	admin  models.Caller
	guard  models.Caller
	route  *models.Route
}

// newTenant creates a tenant with a client, an admin, a guard and a route with the
// given checkpoint codes, ordered as listed. The guard is assigned to the route.
func (e *env) newTenant(t *testing.T, name string, codes ...string) *tenantEnv {
	t.Helper()
	ctx := context.Background()

	te := &tenantEnv{}

	tenant, client, err := e.svc.CreateTenant(ctx, e.superadmin, TenantInput{
		Name:   name,
		Client: AccountInput{Username: name + "-client", Password: "secret"},
	})
	require.NoError(t, err)
	te.tenant = tenant
	te.client = models.CallerFor(client)

	admin, err := e.svc.CreateAdmin(ctx, te.client, AccountInput{Username: name + "-admin", Password: "secret"})
	require.NoError(t, err)
	te.admin = models.CallerFor(admin)

	guard, err := e.svc.CreateGuard(ctx, te.admin, AccountInput{Username: name + "-guard", Password: "secret"})
	require.NoError(t, err)
	te.guard = models.CallerFor(guard)

	in := RouteInput{TenantID: tenant.TenantID, Name: name + " perimeter"}
	for i, code := range codes {
		in.Checkpoints = append(in.Checkpoints, CheckpointInput{Name: "Checkpoint " + code, Code: code, Order: i + 1})
	}
	te.route, err = e.svc.CreateRoute(ctx, e.superadmin, in)
	require.NoError(t, err)

	_, created, err := e.svc.AssignGuard(ctx, te.admin, te.guard.AccountID, te.route.RouteID, "day")
	require.NoError(t, err)
	require.True(t, created)

	return te
}

func requireKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), "error: %v", err)
}
