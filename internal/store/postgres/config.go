package postgres

import (
	"fmt"
)

// StoreConfig holds the configuration of the PostgreSQL patrol store.
type StoreConfig struct {
	// Pool configures the shared connection pool.
	Pool PoolConfig

	// AutoMigrate applies the embedded migrations when the store is created.
	AutoMigrate bool

	// QueryTimeoutSeconds bounds every transaction run through the store.
	// Default: 10 seconds
	// Set to -1 to rely on context deadlines only.
	QueryTimeoutSeconds int32

	// PoolStatsIntervalSeconds is how often pool statistics are logged.
	// Default: 30 seconds
	PoolStatsIntervalSeconds int32
}

// Validate checks that the configuration is valid.
func (c *StoreConfig) Validate() error {
	if err := c.Pool.Validate(); err != nil {
		return err
	}

	if c.QueryTimeoutSeconds < -1 {
		return fmt.Errorf("query timeout must be -1 or positive, got %d", c.QueryTimeoutSeconds)
	}

	return nil
}

// ApplyDefaults applies default values to unset configuration fields.
func (c *StoreConfig) ApplyDefaults() {
	c.Pool.ApplyDefaults()

	if c.QueryTimeoutSeconds == 0 {
		c.QueryTimeoutSeconds = 10
	}
	if c.PoolStatsIntervalSeconds == 0 {
		c.PoolStatsIntervalSeconds = 30
	}
}
