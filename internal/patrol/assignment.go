package patrol

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/patrol/internal/models"
	"github.com/wolfeidau/patrol/internal/store"
)

// ResolveAssignment returns the single assignment of a guard. An unassigned guard is a
// KindNotFound error, never a denial.
func ResolveAssignment(ctx context.Context, tx store.Tx, guardID uuid.UUID) (*models.GuardAssignment, error) {
	return resolve(ctx, guardID, tx.GetAssignmentByGuard)
}

// LockAssignment is ResolveAssignment that also serializes concurrent run transitions
// of the guard until tx ends.
func LockAssignment(ctx context.Context, tx store.Tx, guardID uuid.UUID) (*models.GuardAssignment, error) {
	return resolve(ctx, guardID, tx.LockAssignmentByGuard)
}

func resolve(ctx context.Context, guardID uuid.UUID, get func(context.Context, uuid.UUID) (*models.GuardAssignment, error)) (*models.GuardAssignment, error) {
	assignment, err := get(ctx, guardID)
	if err != nil {
		if errors.Is(err, store.ErrAssignmentNotFound) {
			return nil, newError(KindNotFound, "guard has no assignment")
		}
		return nil, translate(err)
	}
	return assignment, nil
}
