package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/patrol/internal/models"
	"github.com/wolfeidau/patrol/internal/store"
)

// CreateRun creates a run, enforcing a single active run per assignment.
func (t *tx) CreateRun(ctx context.Context, run *models.RouteRun) error {
	if !t.assignmentExists(run.AssignmentID) {
		return store.ErrAssignmentNotFound
	}

	if !run.Completed {
		if _, err := t.GetActiveRun(ctx, run.AssignmentID); err == nil {
			return store.ErrRunAlreadyActive
		}
	}

	t.runs[run.RunID] = cloneValue(run)

	return nil
}

func (t *tx) assignmentExists(assignmentID uuid.UUID) bool {
	for _, assignment := range t.assignments {
		if assignment.AssignmentID == assignmentID {
			return true
		}
	}
	return false
}

// GetActiveRun returns the run of the assignment that is not completed.
func (t *tx) GetActiveRun(ctx context.Context, assignmentID uuid.UUID) (*models.RouteRun, error) {
	for _, run := range t.runs {
		if run.AssignmentID == assignmentID && !run.Completed {
			return cloneValue(run), nil
		}
	}

	return nil, store.ErrRunNotFound
}

// GetLastCompletedRun returns the completed run with the latest end time.
func (t *tx) GetLastCompletedRun(ctx context.Context, assignmentID uuid.UUID) (*models.RouteRun, error) {
	var last *models.RouteRun
	for _, run := range t.runs {
		if run.AssignmentID != assignmentID || !run.Completed || run.EndTime == nil {
			continue
		}
		if last == nil || run.EndTime.After(*last.EndTime) {
			last = run
		}
	}

	if last == nil {
		return nil, store.ErrRunNotFound
	}

	return cloneValue(last), nil
}

// CompleteRun marks an active run completed.
func (t *tx) CompleteRun(ctx context.Context, runID uuid.UUID, endTime time.Time) error {
	run, exists := t.runs[runID]
	if !exists || run.Completed {
		return store.ErrRunNotFound
	}

	run.Completed = true
	run.EndTime = &endTime

	return nil
}

// ListRunsByGuard returns the guard's runs started in [from, to) ordered by start time.
func (t *tx) ListRunsByGuard(ctx context.Context, guardID uuid.UUID, from, to time.Time) ([]*models.RouteRun, error) {
	assignment, exists := t.assignments[guardID]
	if !exists {
		return nil, nil
	}

	var result []*models.RouteRun
	for _, run := range t.runs {
		if run.AssignmentID != assignment.AssignmentID {
			continue
		}
		if run.StartTime.Before(from) || !run.StartTime.Before(to) {
			continue
		}
		result = append(result, cloneValue(run))
	}

	slices.SortFunc(result, func(a, b *models.RouteRun) int {
		return a.StartTime.Compare(b.StartTime)
	})

	return result, nil
}

// CreateScan records a checkpoint scan, unique per (checkpoint, run).
func (t *tx) CreateScan(ctx context.Context, scan *models.CheckpointScan) error {
	if _, exists := t.runs[scan.RunID]; !exists {
		return store.ErrRunNotFound
	}

	if _, err := t.GetScan(ctx, scan.RunID, scan.CheckpointID); err == nil {
		return store.ErrScanAlreadyExists
	}

	t.scans[scan.ScanID] = cloneValue(scan)

	return nil
}

// GetScan returns the scan of a checkpoint in a run.
func (t *tx) GetScan(ctx context.Context, runID, checkpointID uuid.UUID) (*models.CheckpointScan, error) {
	for _, scan := range t.scans {
		if scan.RunID == runID && scan.CheckpointID == checkpointID {
			return cloneValue(scan), nil
		}
	}

	return nil, store.ErrScanNotFound
}

// ListScans returns the scans of a run ordered by scan time.
func (t *tx) ListScans(ctx context.Context, runID uuid.UUID) ([]*models.CheckpointScan, error) {
	var result []*models.CheckpointScan
	for _, scan := range t.scans {
		if scan.RunID == runID {
			result = append(result, cloneValue(scan))
		}
	}

	slices.SortFunc(result, func(a, b *models.CheckpointScan) int {
		if c := a.ScannedAt.Compare(b.ScannedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.CheckpointOrder, b.CheckpointOrder)
	})

	return result, nil
}
