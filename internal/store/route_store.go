package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/patrol/internal/models"
)

// Sentinel errors for route store operations
var (
	ErrRouteNotFound         = errors.New("route not found")
	ErrCheckpointCodeExists  = errors.New("checkpoint code already in use")
	ErrCheckpointOrderExists = errors.New("checkpoint order already in use on route")
)

// RouteStore defines route and checkpoint storage operations.
type RouteStore interface {
	// CreateRoute creates a route with its checkpoints.
	// Returns ErrCheckpointCodeExists if any scan code is already in use.
	CreateRoute(ctx context.Context, route *models.Route) error

	// GetRoute retrieves a route with its checkpoints sorted by order.
	// Returns ErrRouteNotFound if the route doesn't exist.
	GetRoute(ctx context.Context, routeID uuid.UUID) (*models.Route, error)

	// ListRoutes returns routes with checkpoints, for one tenant when tenantID is set.
	ListRoutes(ctx context.Context, tenantID *uuid.UUID) ([]*models.Route, error)

	// DeleteRoute deletes a route with its checkpoints and assignments.
	// Returns ErrRouteNotFound if the route doesn't exist.
	DeleteRoute(ctx context.Context, routeID uuid.UUID) error
}
