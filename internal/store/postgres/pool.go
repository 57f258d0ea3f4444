package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// ApplicationName is reported to the server as application_name on every connection.
const ApplicationName = "patrol"

// PoolConfig configures the pgx connection pool. Durations are in seconds so the
// values map one to one onto command line flags.
type PoolConfig struct {
	// ConnString is a postgres:// URL or a key=value DSN.
	ConnString string

	MaxConns int32 // default 20
	MinConns int32 // default min(5, MaxConns)

	MaxConnLifetime   int32 // default 3600
	MaxConnIdleTime   int32 // default 1800
	HealthCheckPeriod int32 // default 60
	ConnectTimeout    int32 // default 10
}

var poolDefaults = PoolConfig{
	MaxConns:          20,
	MaxConnLifetime:   3600,
	MaxConnIdleTime:   1800,
	HealthCheckPeriod: 60,
	ConnectTimeout:    10,
}

// Validate checks that the pool configuration is valid.
func (c *PoolConfig) Validate() error {
	if c.ConnString == "" {
		return fmt.Errorf("connection string is required")
	}
	if c.MaxConns < 1 {
		return fmt.Errorf("max conns must be positive, got %d", c.MaxConns)
	}
	if c.MinConns > c.MaxConns {
		return fmt.Errorf("min conns (%d) exceeds max conns (%d)", c.MinConns, c.MaxConns)
	}
	return nil
}

// ApplyDefaults fills unset fields from poolDefaults.
func (c *PoolConfig) ApplyDefaults() {
	setDefault(&c.MaxConns, poolDefaults.MaxConns)
	setDefault(&c.MinConns, min(5, c.MaxConns))
	setDefault(&c.MaxConnLifetime, poolDefaults.MaxConnLifetime)
	setDefault(&c.MaxConnIdleTime, poolDefaults.MaxConnIdleTime)
	setDefault(&c.HealthCheckPeriod, poolDefaults.HealthCheckPeriod)
	setDefault(&c.ConnectTimeout, poolDefaults.ConnectTimeout)
}

func setDefault(v *int32, def int32) {
	if *v == 0 {
		*v = def
	}
}

func seconds(v int32) time.Duration {
	return time.Duration(v) * time.Second
}

// pgxConfig builds the pgxpool configuration. Sessions run in UTC so timestamps read
// back from timestamptz columns compare equal to the values written.
func (c *PoolConfig) pgxConfig() (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(c.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	pc.MaxConns = c.MaxConns
	pc.MinConns = c.MinConns
	pc.MaxConnLifetime = seconds(c.MaxConnLifetime)
	pc.MaxConnIdleTime = seconds(c.MaxConnIdleTime)
	pc.HealthCheckPeriod = seconds(c.HealthCheckPeriod)
	pc.ConnConfig.ConnectTimeout = seconds(c.ConnectTimeout)

	params := pc.ConnConfig.RuntimeParams
	if _, ok := params["application_name"]; !ok {
		params["application_name"] = ApplicationName
	}
	params["timezone"] = "UTC"

	return pc, nil
}

// NewPool applies defaults, validates cfg, opens the pool and pings the server.
func NewPool(ctx context.Context, cfg *PoolConfig) (*pgxpool.Pool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("pool config is required")
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pool config: %w", err)
	}

	pc, err := cfg.pgxConfig()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("database", pc.ConnConfig.Database).
		Str("host", pc.ConnConfig.Host).
		Int32("max_conns", cfg.MaxConns).
		Msg("Connected to PostgreSQL")

	return pool, nil
}
