package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/patrol/internal/models"
)

// Sentinel errors for run store operations
var (
	ErrRunNotFound       = errors.New("route run not found")
	ErrRunAlreadyActive  = errors.New("assignment already has an active run")
	ErrScanNotFound      = errors.New("checkpoint scan not found")
	ErrScanAlreadyExists = errors.New("checkpoint already scanned in run")
)

// RunStore defines route run and checkpoint scan storage operations.
type RunStore interface {
	// CreateRun creates a run.
	// Returns ErrRunAlreadyActive if the assignment has a run that is not completed.
	CreateRun(ctx context.Context, run *models.RouteRun) error

	// GetActiveRun returns the run of the assignment that is not completed.
	// Returns ErrRunNotFound if there is none.
	GetActiveRun(ctx context.Context, assignmentID uuid.UUID) (*models.RouteRun, error)

	// GetLastCompletedRun returns the completed run with the latest end time.
	// Returns ErrRunNotFound if there is none.
	GetLastCompletedRun(ctx context.Context, assignmentID uuid.UUID) (*models.RouteRun, error)

	// CompleteRun marks an active run completed at endTime.
	// Returns ErrRunNotFound if the run doesn't exist or is already completed.
	CompleteRun(ctx context.Context, runID uuid.UUID, endTime time.Time) error

	// ListRunsByGuard returns the runs of the guard's assignment whose start time
	// is in [from, to), ordered by start time.
	ListRunsByGuard(ctx context.Context, guardID uuid.UUID, from, to time.Time) ([]*models.RouteRun, error)

	// CreateScan records a checkpoint scan.
	// Returns ErrScanAlreadyExists if the checkpoint was already scanned in the run.
	CreateScan(ctx context.Context, scan *models.CheckpointScan) error

	// GetScan returns the scan of a checkpoint in a run.
	// Returns ErrScanNotFound if the checkpoint wasn't scanned in the run.
	GetScan(ctx context.Context, runID, checkpointID uuid.UUID) (*models.CheckpointScan, error)

	// ListScans returns the scans of a run ordered by scan time.
	ListScans(ctx context.Context, runID uuid.UUID) ([]*models.CheckpointScan, error)
}
