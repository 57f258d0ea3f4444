package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/patrol/internal/models"
	"github.com/wolfeidau/patrol/internal/store"
)

// CreateTenant creates a new tenant in memory.
func (t *tx) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	if _, exists := t.tenants[tenant.TenantID]; exists {
		return store.ErrTenantAlreadyExists
	}

	// Clone to avoid external modifications
	t.tenants[tenant.TenantID] = cloneValue(tenant)

	return nil
}

// GetTenant retrieves a tenant by ID.
func (t *tx) GetTenant(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	tenant, exists := t.tenants[tenantID]
	if !exists {
		return nil, store.ErrTenantNotFound
	}

	return cloneValue(tenant), nil
}

// UpdateTenant updates an existing tenant.
func (t *tx) UpdateTenant(ctx context.Context, tenant *models.Tenant) error {
	existing, exists := t.tenants[tenant.TenantID]
	if !exists {
		return store.ErrTenantNotFound
	}

	tenant.UpdatedAt = time.Now()
	tenant.CreatedAt = existing.CreatedAt

	t.tenants[tenant.TenantID] = cloneValue(tenant)

	return nil
}

// DeleteTenant deletes a tenant and everything it owns.
func (t *tx) DeleteTenant(ctx context.Context, tenantID uuid.UUID) error {
	if _, exists := t.tenants[tenantID]; !exists {
		return store.ErrTenantNotFound
	}

	t.deleteTenant(tenantID)

	return nil
}

// ListTenants returns all tenants ordered by name.
func (t *tx) ListTenants(ctx context.Context) ([]*models.Tenant, error) {
	result := make([]*models.Tenant, 0, len(t.tenants))
	for _, tenant := range t.tenants {
		result = append(result, cloneValue(tenant))
	}

	slices.SortFunc(result, func(a, b *models.Tenant) int {
		return strings.Compare(a.Name, b.Name)
	})

	return result, nil
}
