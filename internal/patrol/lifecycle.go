package patrol

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/patrol/internal/models"
	"github.com/wolfeidau/patrol/internal/store"
)

// Run lifecycle per assignment: none -> active -> completed. Completed is terminal.
// Callers hold the assignment lock (LockAssignment) for the whole transition.

// StartRun opens a new active run. Fails with KindAlreadyActive while another run of the
// assignment is active.
func StartRun(ctx context.Context, tx store.Tx, assignment *models.GuardAssignment, now time.Time) (*models.RouteRun, error) {
	active, err := activeRun(ctx, tx, assignment.AssignmentID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, &Error{Kind: KindAlreadyActive, Message: "a run is already active for this assignment"}
	}

	run := &models.RouteRun{
		RunID:        uuid.Must(uuid.NewV7()),
		AssignmentID: assignment.AssignmentID,
		StartTime:    now,
	}

	// The store's own uniqueness check backs up the lock
	if err := tx.CreateRun(ctx, run); err != nil {
		return nil, translate(err)
	}

	return run, nil
}

// CompleteIfDone completes run when every checkpoint of route has been scanned.
// Returns true when the run transitioned.
func CompleteIfDone(ctx context.Context, tx store.Tx, run *models.RouteRun, route *models.Route, now time.Time) (bool, error) {
	scans, err := tx.ListScans(ctx, run.RunID)
	if err != nil {
		return false, translate(err)
	}

	if len(scans) < len(route.Checkpoints) {
		return false, nil
	}

	if err := complete(ctx, tx, run, now); err != nil {
		return false, err
	}

	return true, nil
}

// EndShift force-completes the active run regardless of progress. Without an active
// run it succeeds and returns nil.
func EndShift(ctx context.Context, tx store.Tx, assignment *models.GuardAssignment, now time.Time) (*models.RouteRun, error) {
	run, err := activeRun(ctx, tx, assignment.AssignmentID)
	if err != nil || run == nil {
		return nil, err
	}

	if err := complete(ctx, tx, run, now); err != nil {
		return nil, err
	}

	return run, nil
}

func complete(ctx context.Context, tx store.Tx, run *models.RouteRun, now time.Time) error {
	if err := tx.CompleteRun(ctx, run.RunID, now); err != nil {
		return translate(err)
	}

	run.Completed = true
	run.EndTime = &now

	return nil
}

// activeRun returns the active run of the assignment, nil when there is none.
func activeRun(ctx context.Context, tx store.Tx, assignmentID uuid.UUID) (*models.RouteRun, error) {
	run, err := tx.GetActiveRun(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return nil, nil
		}
		return nil, translate(err)
	}
	return run, nil
}
