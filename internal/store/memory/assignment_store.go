package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/patrol/internal/models"
	"github.com/wolfeidau/patrol/internal/store"
)

// UpsertAssignment creates or overwrites the guard's assignment.
func (t *tx) UpsertAssignment(ctx context.Context, assignment *models.GuardAssignment) (bool, error) {
	if _, exists := t.accounts[assignment.GuardID]; !exists {
		return false, store.ErrAccountNotFound
	}
	if _, exists := t.routes[assignment.RouteID]; !exists {
		return false, store.ErrRouteNotFound
	}

	now := time.Now()

	existing, exists := t.assignments[assignment.GuardID]
	if exists {
		existing.RouteID = assignment.RouteID
		existing.Shift = assignment.Shift
		existing.UpdatedAt = now
		*assignment = *cloneValue(existing)
		return false, nil
	}

	if assignment.AssignmentID == uuid.Nil {
		assignment.AssignmentID = uuid.Must(uuid.NewV7())
	}
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	t.assignments[assignment.GuardID] = cloneValue(assignment)

	return true, nil
}

// GetAssignmentByGuard retrieves the assignment of a guard.
func (t *tx) GetAssignmentByGuard(ctx context.Context, guardID uuid.UUID) (*models.GuardAssignment, error) {
	assignment, exists := t.assignments[guardID]
	if !exists {
		return nil, store.ErrAssignmentNotFound
	}

	return cloneValue(assignment), nil
}

// LockAssignmentByGuard retrieves the assignment of a guard. The store's writer lock
// already serializes transactions so no extra locking is needed.
func (t *tx) LockAssignmentByGuard(ctx context.Context, guardID uuid.UUID) (*models.GuardAssignment, error) {
	return t.GetAssignmentByGuard(ctx, guardID)
}
