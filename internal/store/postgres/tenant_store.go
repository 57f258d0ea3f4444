package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/patrol/internal/models"
	"github.com/wolfeidau/patrol/internal/store"
)

const tenantColumns = `tenant_id, name, active, created_at, updated_at`

// CreateTenant creates a new tenant in the database.
func (s *txStore) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (
			tenant_id, name, active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5
		)
	`

	_, err := s.tx.Exec(ctx, query,
		tenant.TenantID,
		tenant.Name,
		tenant.Active,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	)
	if err != nil {
		return mapPostgresError(fmt.Errorf("failed to create tenant: %w", err))
	}

	log.Debug().
		Str("tenant_id", tenant.TenantID.String()).
		Str("name", tenant.Name).
		Msg("Created tenant")

	return nil
}

// GetTenant retrieves a tenant by ID.
func (s *txStore) GetTenant(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE tenant_id = $1`

	tenant, err := scanTenant(s.tx.QueryRow(ctx, query, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrTenantNotFound
		}
		return nil, mapPostgresError(fmt.Errorf("failed to get tenant: %w", err))
	}

	return tenant, nil
}

// UpdateTenant updates the name and active flag of a tenant.
func (s *txStore) UpdateTenant(ctx context.Context, tenant *models.Tenant) error {
	tenant.UpdatedAt = time.Now()

	query := `
		UPDATE tenants SET
			name = $2,
			active = $3,
			updated_at = $4
		WHERE tenant_id = $1
	`

	result, err := s.tx.Exec(ctx, query,
		tenant.TenantID,
		tenant.Name,
		tenant.Active,
		tenant.UpdatedAt,
	)
	if err != nil {
		return mapPostgresError(fmt.Errorf("failed to update tenant: %w", err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrTenantNotFound
	}

	log.Debug().
		Str("tenant_id", tenant.TenantID.String()).
		Bool("active", tenant.Active).
		Msg("Updated tenant")

	return nil
}

// DeleteTenant deletes a tenant and everything it owns.
func (s *txStore) DeleteTenant(ctx context.Context, tenantID uuid.UUID) error {
	// Children first, so the result does not depend on FK cascade configuration
	routeIDs, err := s.collectIDs(ctx, `SELECT route_id FROM routes WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return err
	}
	for _, routeID := range routeIDs {
		if err := s.deleteRoute(ctx, routeID); err != nil {
			return err
		}
	}

	accountIDs, err := s.collectIDs(ctx, `SELECT account_id FROM accounts WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return err
	}
	for _, accountID := range accountIDs {
		if err := s.deleteAccount(ctx, accountID); err != nil {
			return err
		}
	}

	result, err := s.tx.Exec(ctx, `DELETE FROM tenants WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return mapPostgresError(fmt.Errorf("failed to delete tenant: %w", err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrTenantNotFound
	}

	log.Info().
		Str("tenant_id", tenantID.String()).
		Int("routes", len(routeIDs)).
		Int("accounts", len(accountIDs)).
		Msg("Deleted tenant")

	return nil
}

// ListTenants returns all tenants ordered by name.
func (s *txStore) ListTenants(ctx context.Context) ([]*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants ORDER BY name, tenant_id`

	rows, err := s.tx.Query(ctx, query)
	if err != nil {
		return nil, mapPostgresError(fmt.Errorf("failed to list tenants: %w", err))
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, tenant)
	}

	if err := rows.Err(); err != nil {
		return nil, mapPostgresError(fmt.Errorf("error iterating tenants: %w", err))
	}

	return tenants, nil
}

func scanTenant(row pgx.Row) (*models.Tenant, error) {
	var tenant models.Tenant
	err := row.Scan(
		&tenant.TenantID,
		&tenant.Name,
		&tenant.Active,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// collectIDs runs a single-column UUID query and returns the values.
func (s *txStore) collectIDs(ctx context.Context, query string, args ...any) ([]uuid.UUID, error) {
	rows, err := s.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPostgresError(fmt.Errorf("failed to query ids: %w", err))
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, mapPostgresError(fmt.Errorf("failed to collect ids: %w", err))
	}

	return ids, nil
}
