package models

import (
	"time"

	"github.com/google/uuid"
)

// RunState is the lifecycle state of an assignment's current run.
type RunState string

const (
	RunStateNone      RunState = "none"
	RunStateActive    RunState = "active"
	RunStateCompleted RunState = "completed"
)

// RouteRun is one execution of an assignment.
type RouteRun struct {
	RunID        uuid.UUID
	AssignmentID uuid.UUID
	StartTime    time.Time
	EndTime      *time.Time
	Completed    bool
}

// State returns the lifecycle state of the run.
func (r *RouteRun) State() RunState {
	if r.Completed {
		return RunStateCompleted
	}
	return RunStateActive
}

// CheckpointScan records that a checkpoint was scanned within a run.
// The checkpoint fields are denormalized for reads.
type CheckpointScan struct {
	ScanID       uuid.UUID
	CheckpointID uuid.UUID
	RunID        uuid.UUID
	ScannedAt    time.Time

	CheckpointName  string
	CheckpointCode  string
	CheckpointOrder int
}
