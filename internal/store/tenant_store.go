package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/patrol/internal/models"
)

// Sentinel errors for tenant store operations
var (
	ErrTenantNotFound      = errors.New("tenant not found")
	ErrTenantAlreadyExists = errors.New("tenant already exists")
)

// TenantStore defines tenant storage operations.
type TenantStore interface {
	// CreateTenant creates a new tenant.
	// Returns ErrTenantAlreadyExists if a tenant with the same ID already exists.
	CreateTenant(ctx context.Context, tenant *models.Tenant) error

	// GetTenant retrieves a tenant by ID.
	// Returns ErrTenantNotFound if the tenant doesn't exist.
	GetTenant(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error)

	// UpdateTenant updates the name and active flag of a tenant.
	// Returns ErrTenantNotFound if the tenant doesn't exist.
	UpdateTenant(ctx context.Context, tenant *models.Tenant) error

	// DeleteTenant deletes a tenant together with its routes and accounts,
	// and everything those own.
	// Returns ErrTenantNotFound if the tenant doesn't exist.
	DeleteTenant(ctx context.Context, tenantID uuid.UUID) error

	// ListTenants returns all tenants ordered by name.
	ListTenants(ctx context.Context) ([]*models.Tenant, error)
}
