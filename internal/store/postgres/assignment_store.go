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

const assignmentColumns = `assignment_id, guard_id, route_id, shift, created_at, updated_at`

// UpsertAssignment creates or overwrites the guard's assignment in one statement.
func (s *txStore) UpsertAssignment(ctx context.Context, assignment *models.GuardAssignment) (bool, error) {
	if assignment.AssignmentID == uuid.Nil {
		assignment.AssignmentID = uuid.Must(uuid.NewV7())
	}
	now := time.Now()

	// xmax = 0 only for freshly inserted rows
	query := `
		INSERT INTO guard_assignments (
			assignment_id, guard_id, route_id, shift, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $5
		)
		ON CONFLICT (guard_id) DO UPDATE SET
			route_id = EXCLUDED.route_id,
			shift = EXCLUDED.shift,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + assignmentColumns + `, (xmax = 0) AS inserted
	`

	var created bool
	err := s.tx.QueryRow(ctx, query,
		assignment.AssignmentID,
		assignment.GuardID,
		assignment.RouteID,
		string(assignment.Shift),
		now,
	).Scan(
		&assignment.AssignmentID,
		&assignment.GuardID,
		&assignment.RouteID,
		&assignment.Shift,
		&assignment.CreatedAt,
		&assignment.UpdatedAt,
		&created,
	)
	if err != nil {
		return false, mapPostgresError(fmt.Errorf("failed to upsert assignment: %w", err))
	}

	log.Debug().
		Str("assignment_id", assignment.AssignmentID.String()).
		Str("guard_id", assignment.GuardID.String()).
		Str("route_id", assignment.RouteID.String()).
		Bool("created", created).
		Msg("Upserted assignment")

	return created, nil
}

// GetAssignmentByGuard retrieves the assignment of a guard.
func (s *txStore) GetAssignmentByGuard(ctx context.Context, guardID uuid.UUID) (*models.GuardAssignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM guard_assignments WHERE guard_id = $1`
	return s.getAssignment(ctx, query, guardID)
}

// LockAssignmentByGuard retrieves the assignment of a guard and holds a row lock on it
// until the transaction ends.
func (s *txStore) LockAssignmentByGuard(ctx context.Context, guardID uuid.UUID) (*models.GuardAssignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM guard_assignments WHERE guard_id = $1 FOR UPDATE`
	return s.getAssignment(ctx, query, guardID)
}

func (s *txStore) getAssignment(ctx context.Context, query string, guardID uuid.UUID) (*models.GuardAssignment, error) {
	var assignment models.GuardAssignment
	err := s.tx.QueryRow(ctx, query, guardID).Scan(
		&assignment.AssignmentID,
		&assignment.GuardID,
		&assignment.RouteID,
		&assignment.Shift,
		&assignment.CreatedAt,
		&assignment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrAssignmentNotFound
		}
		return nil, mapPostgresError(fmt.Errorf("failed to get assignment: %w", err))
	}

	return &assignment, nil
}

func (s *txStore) deleteAssignmentByGuard(ctx context.Context, guardID uuid.UUID) error {
	runIDs, err := s.collectIDs(ctx, `
		SELECT r.run_id FROM route_runs r
		JOIN guard_assignments a ON a.assignment_id = r.assignment_id
		WHERE a.guard_id = $1
	`, guardID)
	if err != nil {
		return err
	}

	if len(runIDs) > 0 {
		for _, table := range []string{"checkpoint_scans", "incidents", "occurrences", "route_runs"} {
			if _, err := s.tx.Exec(ctx, `DELETE FROM `+table+` WHERE run_id = ANY($1)`, runIDs); err != nil {
				return mapPostgresError(fmt.Errorf("failed to delete from %s: %w", table, err))
			}
		}
	}

	if _, err := s.tx.Exec(ctx, `DELETE FROM guard_assignments WHERE guard_id = $1`, guardID); err != nil {
		return mapPostgresError(fmt.Errorf("failed to delete assignment: %w", err))
	}

	return nil
}
