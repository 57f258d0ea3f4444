package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/patrol/internal/models"
)

// ErrAssignmentNotFound is returned when a guard has no assignment.
var ErrAssignmentNotFound = errors.New("assignment not found")

// AssignmentStore defines guard assignment storage operations.
type AssignmentStore interface {
	// UpsertAssignment creates the guard's assignment or overwrites its route and shift.
	// The stored assignment ID is written back. Returns true when a new row was created.
	UpsertAssignment(ctx context.Context, assignment *models.GuardAssignment) (bool, error)

	// GetAssignmentByGuard retrieves the assignment of a guard.
	// Returns ErrAssignmentNotFound if the guard is not assigned.
	GetAssignmentByGuard(ctx context.Context, guardID uuid.UUID) (*models.GuardAssignment, error)

	// LockAssignmentByGuard is GetAssignmentByGuard that also holds a row lock
	// on the assignment until the transaction ends.
	LockAssignmentByGuard(ctx context.Context, guardID uuid.UUID) (*models.GuardAssignment, error)
}
