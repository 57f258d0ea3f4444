package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/patrol/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL.
//
// Write transactions run at READ COMMITTED. Operations that race on a guard's runs
// serialize on the assignment row with LockAssignmentByGuard. Read transactions run
// at REPEATABLE READ so reports see a single snapshot.
type Store struct {
	pool *pgxpool.Pool
	cfg  *StoreConfig

	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewStore creates a new PostgreSQL-backed store with its own connection pool.
func NewStore(ctx context.Context, cfg *StoreConfig) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("store config is required")
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid store config: %w", err)
	}

	pool, err := NewPool(ctx, &cfg.Pool)
	if err != nil {
		return nil, err
	}

	// Run migrations only if explicitly enabled
	if cfg.AutoMigrate {
		if err := RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info().Msg("Database migrations completed")
	}

	s := &Store{
		pool:   pool,
		cfg:    cfg,
		stopCh: make(chan struct{}),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.monitorConnectionPool()
	}()

	return s, nil
}

// InTx runs fn inside a read-write transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
func (s *Store) InTx(ctx context.Context, fn store.TxFunc) error {
	return s.run(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

// InReadTx runs fn inside a read-only snapshot transaction.
func (s *Store) InReadTx(ctx context.Context, fn store.TxFunc) error {
	return s.run(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, fn)
}

func (s *Store) run(ctx context.Context, opts pgx.TxOptions, fn store.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.cfg.QueryTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.cfg.QueryTimeoutSeconds)*time.Second)
		defer cancel()
	}

	tx, err := s.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", store.ErrTransient, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback is safe to call after commit

	if err := fn(ctx, &txStore{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return mapPostgresError(fmt.Errorf("failed to commit transaction: %w", err))
	}

	return nil
}

// Pool returns the underlying connection pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Close stops background tasks and closes the connection pool.
func (s *Store) Close() error {
	s.once.Do(func() {
		log.Info().Msg("Stopping PostgreSQL store")

		close(s.stopCh)
		s.wg.Wait()
		s.pool.Close()

		log.Info().Msg("PostgreSQL store stopped")
	})
	return nil
}

// monitorConnectionPool logs connection pool statistics periodically.
func (s *Store) monitorConnectionPool() {
	ticker := time.NewTicker(time.Duration(s.cfg.PoolStatsIntervalSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats := s.pool.Stat()
			log.Debug().
				Int32("total_conns", stats.TotalConns()).
				Int32("idle_conns", stats.IdleConns()).
				Int32("acquired_conns", stats.AcquiredConns()).
				Int64("acquire_count", stats.AcquireCount()).
				Int64("acquire_duration_ns", stats.AcquireDuration().Nanoseconds()).
				Msg("Connection pool stats")
		case <-s.stopCh:
			return
		}
	}
}

// txStore implements store.Tx on a pgx transaction.
type txStore struct {
	tx pgx.Tx
}

var _ store.Tx = (*txStore)(nil)
