package commands

import (
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testCLI struct {
	Debug   bool
	Serve   ServeCmd   `cmd:""`
	Migrate MigrateCmd `cmd:""`
}

func parse(t *testing.T, args ...string) (*testCLI, error) {
	t.Helper()

	var cli testCLI
	parser, err := kong.New(&cli, kong.Name("patrol-server"), kong.Exit(func(int) {}))
	require.NoError(t, err)

	_, err = parser.Parse(args)
	return &cli, err
}

func TestServeFlags(t *testing.T) {
	t.Setenv("PATROL_TOKEN_SECRET", "")
	t.Setenv("POSTGRES_CONNECTION_STRING", "")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name: "memory store",
			args: []string{"serve", "--token-secret", testSecret},
		},
		{
			name: "postgres store",
			args: []string{"serve", "--token-secret", testSecret, "--store-type", "postgres", "--postgres-conn-string", "postgres://localhost/patrol"},
		},
		{
			name:    "postgres store needs conn string",
			args:    []string{"serve", "--token-secret", testSecret, "--store-type", "postgres"},
			wantErr: "connection string is required",
		},
		{
			name:    "short secret",
			args:    []string{"serve", "--token-secret", "short"},
			wantErr: "at least 32 bytes",
		},
		{
			name:    "seed needs both",
			args:    []string{"serve", "--token-secret", testSecret, "--seed-username", "root"},
			wantErr: "must be set together",
		},
		{
			name:    "cert without key",
			args:    []string{"serve", "--token-secret", testSecret, "--cert", "server.pem"},
			wantErr: "certificate and key",
		},
		{
			name:    "unknown store",
			args:    []string{"serve", "--token-secret", testSecret, "--store-type", "dynamodb"},
			wantErr: "must be one of",
		},
		{
			name:    "bad sample ratio",
			args:    []string{"serve", "--token-secret", testSecret, "--sample-ratio", "2"},
			wantErr: "sample ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.args...)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestServeDefaults(t *testing.T) {
	t.Setenv("PATROL_TOKEN_SECRET", testSecret)

	cli, err := parse(t, "serve")
	require.NoError(t, err)

	serve := cli.Serve
	require.Equal(t, "0.0.0.0:8080", serve.Listen)
	require.Equal(t, "memory", serve.StoreType)
	require.Equal(t, "UTC", serve.ReportTimeZone)
	require.Equal(t, 12*time.Hour, serve.Token.TTL)
	require.True(t, serve.Compress)
	require.False(t, serve.Telemetry.Enabled)
	require.Equal(t, int32(20), serve.PostgresStore.MaxConns)

	cfg := serve.PostgresStore.storeConfig()
	require.Equal(t, int32(10), cfg.QueryTimeoutSeconds)
	require.False(t, cfg.AutoMigrate)
}

func TestMigrateFlags(t *testing.T) {
	t.Setenv("POSTGRES_CONNECTION_STRING", "")

	_, err := parse(t, "migrate")
	require.ErrorContains(t, err, "connection string is required")

	cli, err := parse(t, "migrate", "--postgres-conn-string", "postgres://localhost/patrol")
	require.NoError(t, err)
	require.Equal(t, "postgres://localhost/patrol", cli.Migrate.PostgresStore.ConnString)
}

func TestConfigureHTTPServer(t *testing.T) {
	srv := configureHTTPServer(":0", nil)
	require.Equal(t, ":0", srv.Addr)
	require.Equal(t, 8*1024, srv.MaxHeaderBytes)
	require.NotZero(t, srv.ReadHeaderTimeout)
}
