package commands

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wolfeidau/patrol/internal/auth"
	"github.com/wolfeidau/patrol/internal/models"
	"github.com/wolfeidau/patrol/internal/patrol"
	"github.com/wolfeidau/patrol/internal/server"
	memorystore "github.com/wolfeidau/patrol/internal/store/memory"
)

const testSecret = "0123456789abcdef0123456789abcdef"

const routeYAML = `name: North perimeter
checkpoints:
  - name: Gate
    code: QR-GATE
  - name: Dock
    code: QR-DOCK
`

type harness struct {
	svc   *patrol.Service
	flags ClientFlags
	out   *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	svc := patrol.NewService(memorystore.NewStore(), patrol.WithPasswordCost(bcrypt.MinCost))
	_, err := svc.SeedSuperadmin(context.Background(), "root", "root-password")
	require.NoError(t, err)

	issuer, err := auth.NewTokenIssuer(testSecret, time.Hour)
	require.NoError(t, err)
	verifier, err := auth.NewTokenVerifier(testSecret)
	require.NoError(t, err)

	ts := httptest.NewServer(server.NewServer(svc, issuer, verifier).Handler(zerolog.Nop(), server.HandlerOptions{}))
	t.Cleanup(ts.Close)

	return &harness{
		svc:   svc,
		flags: ClientFlags{Server: ts.URL, Timeout: 5 * time.Second, MaxTries: 1},
		out:   &bytes.Buffer{},
	}
}

func (h *harness) globals() *Globals {
	h.out.Reset()
	return &Globals{Version: "test", Out: h.out}
}

func (h *harness) as(token string) ClientFlags {
	flags := h.flags
	flags.Token = token
	return flags
}

func (h *harness) login(t *testing.T, username, password string) string {
	t.Helper()
	cmd := &LoginCmd{ClientFlags: h.flags, Username: username, Password: password}
	require.NoError(t, cmd.Run(context.Background(), h.globals()))
	return strings.TrimSpace(h.out.String())
}

func TestLoginAndWhoami(t *testing.T) {
	h := newHarness(t)
	token := h.login(t, "root", "root-password")
	require.NotEmpty(t, token)

	cmd := &WhoamiCmd{ClientFlags: h.as(token)}
	require.NoError(t, cmd.Run(context.Background(), h.globals()))
	require.Contains(t, h.out.String(), "Role:    superadmin")

	bad := &LoginCmd{ClientFlags: h.flags, Username: "root", Password: "nope"}
	err := bad.Run(context.Background(), h.globals())
	require.ErrorContains(t, err, "invalid_credentials")
}

func TestTokenCmd(t *testing.T) {
	verifier, err := auth.NewTokenVerifier(testSecret)
	require.NoError(t, err)

	accountID := "0195a3b2-0000-7000-8000-000000000001"
	tenantID := "0195a3b2-0000-7000-8000-0000000000aa"

	tests := []struct {
		name    string
		cmd     TokenCmd
		wantErr string
		want    models.RoleKind
	}{
		{
			name: "guard",
			cmd:  TokenCmd{Account: accountID, Role: "guard", Tenant: tenantID, TTL: time.Hour, Secret: testSecret},
			want: models.RoleGuard,
		},
		{
			name: "superadmin ignores tenant",
			cmd:  TokenCmd{Account: accountID, Role: "superadmin", TTL: time.Hour, Secret: testSecret},
			want: models.RoleSuperadmin,
		},
		{
			name:    "scoped role needs tenant",
			cmd:     TokenCmd{Account: accountID, Role: "admin", TTL: time.Hour, Secret: testSecret},
			wantErr: "--tenant is required",
		},
		{
			name:    "bad account",
			cmd:     TokenCmd{Account: "nope", Role: "guard", Tenant: tenantID, TTL: time.Hour, Secret: testSecret},
			wantErr: "invalid account",
		},
		{
			name:    "short secret",
			cmd:     TokenCmd{Account: accountID, Role: "guard", Tenant: tenantID, TTL: time.Hour, Secret: "short"},
			wantErr: "secret",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := tt.cmd.Run(context.Background(), &Globals{Out: &out})
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			caller, err := verifier.Verify(strings.TrimSpace(out.String()))
			require.NoError(t, err)
			require.Equal(t, tt.want, caller.Role.Kind)
			require.Equal(t, accountID, caller.AccountID.String())
		})
	}
}

func TestPatrolCommands(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	rootToken := h.login(t, "root", "root-password")

	superadmin, err := h.svc.Login(ctx, "root", "root-password")
	require.NoError(t, err)
	tenant, client, err := h.svc.CreateTenant(ctx, superadmin, patrol.TenantInput{
		Name:   "acme",
		Client: patrol.AccountInput{Username: "acme-client", Password: "secret"},
	})
	require.NoError(t, err)
	guard, err := h.svc.CreateGuard(ctx, models.CallerFor(client), patrol.AccountInput{Username: "acme-guard", Password: "secret"})
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "route.yaml")
	require.NoError(t, os.WriteFile(file, []byte(routeYAML), 0o600))

	importCmd := &RouteImportCmd{ClientFlags: h.as(rootToken), File: file, Tenant: tenant.TenantID.String()}
	require.NoError(t, importCmd.Run(ctx, h.globals()))
	require.Contains(t, h.out.String(), "created with 2 checkpoints")

	routes, err := h.svc.ListRoutes(ctx, superadmin)
	require.NoError(t, err)
	require.Len(t, routes, 1)

	_, _, err = h.svc.AssignGuard(ctx, models.CallerFor(client), guard.AccountID, routes[0].RouteID, "night")
	require.NoError(t, err)

	guardFlags := h.as(h.login(t, "acme-guard", "secret"))

	require.NoError(t, (&AssignmentCmd{ClientFlags: guardFlags}).Run(ctx, h.globals()))
	require.Contains(t, h.out.String(), "Route: North perimeter (shift night)")

	require.NoError(t, (&StartCmd{ClientFlags: guardFlags}).Run(ctx, h.globals()))
	require.Contains(t, h.out.String(), "started at")

	err = (&ScanCmd{ClientFlags: guardFlags, Code: "QR-DOCK"}).Run(ctx, h.globals())
	require.ErrorContains(t, err, "wrong_order")

	require.NoError(t, (&ScanCmd{ClientFlags: guardFlags, Code: "QR-GATE"}).Run(ctx, h.globals()))
	require.Contains(t, h.out.String(), "Next checkpoint: 2")

	require.NoError(t, (&ScanCmd{ClientFlags: guardFlags, Code: "QR-DOCK"}).Run(ctx, h.globals()))
	require.Contains(t, h.out.String(), "completed")

	require.NoError(t, (&EndShiftCmd{ClientFlags: guardFlags}).Run(ctx, h.globals()))
	require.Contains(t, h.out.String(), "No active run")

	clientFlags := h.as(h.login(t, "acme-client", "secret"))
	report := &ReportCmd{ClientFlags: clientFlags, Guard: guard.AccountID.String()}
	require.NoError(t, report.Run(ctx, h.globals()))
	require.Contains(t, h.out.String(), "Guard acme-guard")
	require.Contains(t, h.out.String(), "1 run(s)")
	require.Contains(t, h.out.String(), "Dock")

	require.NoError(t, (&FreezeCmd{ClientFlags: h.as(rootToken), Tenant: tenant.TenantID.String()}).Run(ctx, h.globals()))
	require.Contains(t, h.out.String(), "Tenant acme frozen")

	err = (&StartCmd{ClientFlags: guardFlags}).Run(ctx, h.globals())
	require.ErrorContains(t, err, "tenant_frozen")

	require.NoError(t, (&UnfreezeCmd{ClientFlags: h.as(rootToken), Tenant: tenant.TenantID.String()}).Run(ctx, h.globals()))
	require.Contains(t, h.out.String(), "Tenant acme active")
}
