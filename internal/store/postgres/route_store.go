package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/patrol/internal/models"
	"github.com/wolfeidau/patrol/internal/store"
)

// CreateRoute creates a route with its checkpoints.
func (s *txStore) CreateRoute(ctx context.Context, route *models.Route) error {
	_, err := s.tx.Exec(ctx, `
		INSERT INTO routes (route_id, tenant_id, name, created_at)
		VALUES ($1, $2, $3, $4)
	`, route.RouteID, route.TenantID, route.Name, route.CreatedAt)
	if err != nil {
		return mapPostgresError(fmt.Errorf("failed to create route: %w", err))
	}

	batch := &pgx.Batch{}
	for _, cp := range route.Checkpoints {
		batch.Queue(`
			INSERT INTO checkpoints (checkpoint_id, route_id, name, code, sort_order)
			VALUES ($1, $2, $3, $4, $5)
		`, cp.CheckpointID, route.RouteID, cp.Name, cp.Code, cp.Order)
	}

	if err := s.tx.SendBatch(ctx, batch).Close(); err != nil {
		return mapPostgresError(fmt.Errorf("failed to create checkpoints: %w", err))
	}

	log.Debug().
		Str("route_id", route.RouteID.String()).
		Str("tenant_id", route.TenantID.String()).
		Int("checkpoints", len(route.Checkpoints)).
		Msg("Created route")

	return nil
}

// GetRoute retrieves a route by ID with its checkpoints sorted by order.
func (s *txStore) GetRoute(ctx context.Context, routeID uuid.UUID) (*models.Route, error) {
	var route models.Route
	err := s.tx.QueryRow(ctx, `
		SELECT route_id, tenant_id, name, created_at FROM routes WHERE route_id = $1
	`, routeID).Scan(&route.RouteID, &route.TenantID, &route.Name, &route.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrRouteNotFound
		}
		return nil, mapPostgresError(fmt.Errorf("failed to get route: %w", err))
	}

	routes := map[uuid.UUID]*models.Route{route.RouteID: &route}
	if err := s.loadCheckpoints(ctx, routes); err != nil {
		return nil, err
	}

	return &route, nil
}

// ListRoutes returns routes ordered by name.
func (s *txStore) ListRoutes(ctx context.Context, tenantID *uuid.UUID) ([]*models.Route, error) {
	query := `SELECT route_id, tenant_id, name, created_at FROM routes`
	var args []any
	if tenantID != nil {
		query += ` WHERE tenant_id = $1`
		args = append(args, *tenantID)
	}
	query += ` ORDER BY name, route_id`

	rows, err := s.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPostgresError(fmt.Errorf("failed to list routes: %w", err))
	}
	defer rows.Close()

	var routes []*models.Route
	byID := make(map[uuid.UUID]*models.Route)
	for rows.Next() {
		var route models.Route
		if err := rows.Scan(&route.RouteID, &route.TenantID, &route.Name, &route.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		routes = append(routes, &route)
		byID[route.RouteID] = &route
	}

	if err := rows.Err(); err != nil {
		return nil, mapPostgresError(fmt.Errorf("error iterating routes: %w", err))
	}

	if err := s.loadCheckpoints(ctx, byID); err != nil {
		return nil, err
	}

	return routes, nil
}

// loadCheckpoints fills the checkpoints of the given routes in one query.
func (s *txStore) loadCheckpoints(ctx context.Context, routes map[uuid.UUID]*models.Route) error {
	if len(routes) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(routes))
	for id := range routes {
		ids = append(ids, id)
	}

	rows, err := s.tx.Query(ctx, `
		SELECT checkpoint_id, route_id, name, code, sort_order
		FROM checkpoints
		WHERE route_id = ANY($1)
		ORDER BY route_id, sort_order
	`, ids)
	if err != nil {
		return mapPostgresError(fmt.Errorf("failed to list checkpoints: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var cp models.Checkpoint
		if err := rows.Scan(&cp.CheckpointID, &cp.RouteID, &cp.Name, &cp.Code, &cp.Order); err != nil {
			return fmt.Errorf("failed to scan checkpoint: %w", err)
		}
		route := routes[cp.RouteID]
		route.Checkpoints = append(route.Checkpoints, cp)
	}

	if err := rows.Err(); err != nil {
		return mapPostgresError(fmt.Errorf("error iterating checkpoints: %w", err))
	}

	return nil
}

// DeleteRoute deletes a route and everything it owns.
func (s *txStore) DeleteRoute(ctx context.Context, routeID uuid.UUID) error {
	if err := s.deleteRoute(ctx, routeID); err != nil {
		return err
	}

	log.Info().
		Str("route_id", routeID.String()).
		Msg("Deleted route")

	return nil
}

func (s *txStore) deleteRoute(ctx context.Context, routeID uuid.UUID) error {
	guardIDs, err := s.collectIDs(ctx, `SELECT guard_id FROM guard_assignments WHERE route_id = $1`, routeID)
	if err != nil {
		return err
	}
	for _, guardID := range guardIDs {
		if err := s.deleteAssignmentByGuard(ctx, guardID); err != nil {
			return err
		}
	}

	if _, err := s.tx.Exec(ctx, `DELETE FROM checkpoints WHERE route_id = $1`, routeID); err != nil {
		return mapPostgresError(fmt.Errorf("failed to delete checkpoints: %w", err))
	}

	result, err := s.tx.Exec(ctx, `DELETE FROM routes WHERE route_id = $1`, routeID)
	if err != nil {
		return mapPostgresError(fmt.Errorf("failed to delete route: %w", err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrRouteNotFound
	}

	return nil
}
