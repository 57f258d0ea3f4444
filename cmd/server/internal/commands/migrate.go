package commands

import (
	"context"
	"fmt"

	"github.com/wolfeidau/patrol/internal/logger"
	postgresstore "github.com/wolfeidau/patrol/internal/store/postgres"
)

type MigrateCmd struct {
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

func (c *MigrateCmd) Validate() error {
	return c.PostgresStore.Validate()
}

func (c *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)
	logger.SetGlobal(log)

	poolCfg := c.PostgresStore.poolConfig()
	pool, err := postgresstore.NewPool(ctx, &poolCfg)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	if err := postgresstore.RunMigrations(ctx, pool); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info().Msg("Database migrations completed")
	return nil
}
