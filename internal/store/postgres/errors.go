package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wolfeidau/patrol/internal/store"
)

// uniqueConstraints maps unique constraint and index names from the schema to sentinel errors.
var uniqueConstraints = map[string]error{
	"tenants_pkey":                        store.ErrTenantAlreadyExists,
	"accounts_pkey":                       store.ErrAccountAlreadyExists,
	"accounts_username_key":               store.ErrAccountAlreadyExists,
	"accounts_one_client_per_tenant":      store.ErrClientAlreadyExists,
	"checkpoints_code_key":                store.ErrCheckpointCodeExists,
	"checkpoints_route_order_key":         store.ErrCheckpointOrderExists,
	"route_runs_one_active":               store.ErrRunAlreadyActive,
	"checkpoint_scans_checkpoint_run_key": store.ErrScanAlreadyExists,
}

// foreignKeys maps foreign key constraint names to the sentinel of the missing parent.
var foreignKeys = map[string]error{
	"accounts_tenant_fk":         store.ErrTenantNotFound,
	"routes_tenant_fk":           store.ErrTenantNotFound,
	"guard_assignments_guard_fk": store.ErrAccountNotFound,
	"guard_assignments_route_fk": store.ErrRouteNotFound,
	"route_runs_assignment_fk":   store.ErrAssignmentNotFound,
	"checkpoint_scans_run_fk":    store.ErrRunNotFound,
	"incidents_run_fk":           store.ErrRunNotFound,
	"incidents_guard_fk":         store.ErrAccountNotFound,
	"occurrences_run_fk":         store.ErrRunNotFound,
}

// mapPostgresError maps PostgreSQL-specific errors to sentinel errors.
// Returns the original error if it's not a PostgreSQL error or doesn't match known patterns.
func mapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	// Check if it's a PostgreSQL error
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		// Dropped connections surface as plain errors
		if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
			return fmt.Errorf("%w: %w", store.ErrTransient, err)
		}
		return err
	}

	// Map error codes to sentinel errors
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		if sentinel, ok := uniqueConstraints[pgErr.ConstraintName]; ok {
			return sentinel
		}
		return fmt.Errorf("unique constraint violation: %s: %w", pgErr.ConstraintName, err)

	case pgerrcode.ForeignKeyViolation:
		if sentinel, ok := foreignKeys[pgErr.ConstraintName]; ok {
			return fmt.Errorf("%w: %s", sentinel, pgErr.Detail)
		}
		return fmt.Errorf("foreign key violation: %s: %w", pgErr.ConstraintName, err)

	case pgerrcode.CheckViolation:
		// Invalid state or constraint violation
		return fmt.Errorf("check constraint violation: %s: %w", pgErr.ConstraintName, err)

	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		// Retryable transaction errors
		return fmt.Errorf("%w: transaction conflict: %w", store.ErrTransient, err)

	case pgerrcode.ConnectionException,
		pgerrcode.ConnectionDoesNotExist,
		pgerrcode.ConnectionFailure,
		pgerrcode.CannotConnectNow,
		pgerrcode.SQLClientUnableToEstablishSQLConnection:
		// Connection errors
		return fmt.Errorf("%w: database connection error: %w", store.ErrTransient, err)

	case pgerrcode.AdminShutdown,
		pgerrcode.CrashShutdown:
		// Server unavailable
		return fmt.Errorf("%w: database server unavailable: %w", store.ErrTransient, err)

	case pgerrcode.QueryCanceled:
		// Context cancellation or timeout
		return fmt.Errorf("%w: query canceled: %w", store.ErrTransient, err)

	case pgerrcode.InsufficientResources,
		pgerrcode.DiskFull,
		pgerrcode.OutOfMemory,
		pgerrcode.TooManyConnections:
		// Resource errors (throttling-like)
		return fmt.Errorf("%w: database resource limit: %w", store.ErrTransient, err)

	default:
		// Unknown error - wrap with PostgreSQL error details
		return fmt.Errorf("postgres error [%s]: %s (detail: %s, hint: %s): %w",
			pgErr.Code, pgErr.Message, pgErr.Detail, pgErr.Hint, err)
	}
}
