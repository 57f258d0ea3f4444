package models

import (
	"time"

	"github.com/google/uuid"
)

// Route is an ordered patrol template owned by a tenant.
type Route struct {
	RouteID     uuid.UUID
	TenantID    uuid.UUID
	Name        string
	Checkpoints []Checkpoint // sorted by Order
	CreatedAt   time.Time
}

// Checkpoint is a physical point on a route identified by a scan code.
type Checkpoint struct {
	CheckpointID uuid.UUID
	RouteID      uuid.UUID
	Name         string
	Code         string // globally unique, printed on the QR tag
	Order        int    // dense 1..N within the route
}

// CheckpointByCode finds the checkpoint with the given scan code.
func (r *Route) CheckpointByCode(code string) (*Checkpoint, bool) {
	for i := range r.Checkpoints {
		if r.Checkpoints[i].Code == code {
			return &r.Checkpoints[i], true
		}
	}
	return nil, false
}

// CheckpointByID finds the checkpoint with the given ID.
func (r *Route) CheckpointByID(id uuid.UUID) (*Checkpoint, bool) {
	for i := range r.Checkpoints {
		if r.Checkpoints[i].CheckpointID == id {
			return &r.Checkpoints[i], true
		}
	}
	return nil, false
}
