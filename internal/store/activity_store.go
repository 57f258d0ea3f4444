package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/wolfeidau/patrol/internal/models"
)

// ActivityStore defines the append-only incident and occurrence logs of a run.
type ActivityStore interface {
	// CreateIncident appends an incident. Returns ErrRunNotFound if the run doesn't exist.
	CreateIncident(ctx context.Context, incident *models.Incident) error

	// ListIncidents returns the incidents of a run ordered by timestamp.
	ListIncidents(ctx context.Context, runID uuid.UUID) ([]*models.Incident, error)

	// CreateOccurrence appends an occurrence. Returns ErrRunNotFound if the run doesn't exist.
	CreateOccurrence(ctx context.Context, occurrence *models.Occurrence) error

	// ListOccurrences returns the occurrences of a run ordered by timestamp.
	ListOccurrences(ctx context.Context, runID uuid.UUID) ([]*models.Occurrence, error)
}
