package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/wolfeidau/patrol/internal/models"
	"github.com/wolfeidau/patrol/internal/store"
)

// CreateRoute creates a route with its checkpoints.
func (t *tx) CreateRoute(ctx context.Context, route *models.Route) error {
	if _, exists := t.tenants[route.TenantID]; !exists {
		return store.ErrTenantNotFound
	}

	orders := make(map[int]struct{}, len(route.Checkpoints))
	for _, cp := range route.Checkpoints {
		if t.codeInUse(cp.Code) {
			return store.ErrCheckpointCodeExists
		}
		if _, dup := orders[cp.Order]; dup {
			return store.ErrCheckpointOrderExists
		}
		orders[cp.Order] = struct{}{}
	}

	// Codes must also be unique within the new route itself
	codes := make(map[string]struct{}, len(route.Checkpoints))
	for _, cp := range route.Checkpoints {
		if _, dup := codes[cp.Code]; dup {
			return store.ErrCheckpointCodeExists
		}
		codes[cp.Code] = struct{}{}
	}

	clone := cloneRoute(route)
	sortCheckpoints(clone.Checkpoints)
	t.routes[route.RouteID] = clone

	return nil
}

func (t *tx) codeInUse(code string) bool {
	for _, route := range t.routes {
		if _, found := route.CheckpointByCode(code); found {
			return true
		}
	}
	return false
}

// GetRoute retrieves a route by ID.
func (t *tx) GetRoute(ctx context.Context, routeID uuid.UUID) (*models.Route, error) {
	route, exists := t.routes[routeID]
	if !exists {
		return nil, store.ErrRouteNotFound
	}

	return cloneRoute(route), nil
}

// ListRoutes returns routes ordered by name.
func (t *tx) ListRoutes(ctx context.Context, tenantID *uuid.UUID) ([]*models.Route, error) {
	var result []*models.Route
	for _, route := range t.routes {
		if tenantID != nil && route.TenantID != *tenantID {
			continue
		}
		result = append(result, cloneRoute(route))
	}

	slices.SortFunc(result, func(a, b *models.Route) int {
		return strings.Compare(a.Name, b.Name)
	})

	return result, nil
}

// DeleteRoute deletes a route and everything it owns.
func (t *tx) DeleteRoute(ctx context.Context, routeID uuid.UUID) error {
	if _, exists := t.routes[routeID]; !exists {
		return store.ErrRouteNotFound
	}

	t.deleteRoute(routeID)

	return nil
}

func sortCheckpoints(cps []models.Checkpoint) {
	slices.SortFunc(cps, func(a, b models.Checkpoint) int {
		return cmp.Compare(a.Order, b.Order)
	})
}
