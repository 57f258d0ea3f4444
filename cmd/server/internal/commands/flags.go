package commands

import (
	"errors"
	"fmt"
	"time"

	postgresstore "github.com/wolfeidau/patrol/internal/store/postgres"
)

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"5"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`
	QueryTimeout    int32 `help:"per transaction timeout in seconds, -1 to disable" default:"10"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"PATROL_POSTGRES_AUTO_MIGRATE"`
}

func (s *PostgresStoreFlags) Validate() error {
	if s.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

func (s *PostgresStoreFlags) poolConfig() postgresstore.PoolConfig {
	return postgresstore.PoolConfig{
		ConnString:      s.ConnString,
		MaxConns:        s.MaxConns,
		MinConns:        s.MinConns,
		MaxConnLifetime: s.MaxConnLifetime,
		MaxConnIdleTime: s.MaxConnIdleTime,
	}
}

func (s *PostgresStoreFlags) storeConfig() *postgresstore.StoreConfig {
	return &postgresstore.StoreConfig{
		Pool:                s.poolConfig(),
		AutoMigrate:         s.AutoMigrate,
		QueryTimeoutSeconds: s.QueryTimeout,
	}
}

// TokenFlags configures caller identity tokens.
type TokenFlags struct {
	Secret string        `help:"HMAC secret for signing tokens, at least 32 bytes" env:"PATROL_TOKEN_SECRET"`
	TTL    time.Duration `help:"token lifetime" default:"12h" env:"PATROL_TOKEN_TTL"`
}

func (t *TokenFlags) Validate() error {
	if len(t.Secret) < 32 {
		return errors.New("token secret must be at least 32 bytes (--token-secret or PATROL_TOKEN_SECRET)")
	}
	return nil
}

// SeedFlags create the superadmin account on startup when both are set.
type SeedFlags struct {
	Username string `help:"superadmin username to create on startup" env:"PATROL_SEED_USERNAME"`
	Password string `help:"superadmin password to create on startup" env:"PATROL_SEED_PASSWORD"`
}

func (s *SeedFlags) Validate() error {
	if (s.Username == "") != (s.Password == "") {
		return errors.New("seed username and password must be set together")
	}
	return nil
}

// TelemetryFlags configure OpenTelemetry export.
type TelemetryFlags struct {
	Enabled        bool          `name:"telemetry" help:"export traces and metrics over OTLP" default:"false" env:"PATROL_TELEMETRY"`
	SampleRatio    float64       `help:"fraction of traces sampled" default:"1" env:"PATROL_TELEMETRY_SAMPLE_RATIO"`
	ExportInterval time.Duration `help:"metric export interval" default:"30s" env:"PATROL_TELEMETRY_EXPORT_INTERVAL"`
}

func (t *TelemetryFlags) Validate() error {
	if t.SampleRatio <= 0 || t.SampleRatio > 1 {
		return fmt.Errorf("sample ratio must be in (0, 1], got %v", t.SampleRatio)
	}
	return nil
}
