package memory

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/wolfeidau/patrol/internal/models"
	"github.com/wolfeidau/patrol/internal/store"
)

// CreateIncident appends an incident to a run.
func (t *tx) CreateIncident(ctx context.Context, incident *models.Incident) error {
	if _, exists := t.runs[incident.RunID]; !exists {
		return store.ErrRunNotFound
	}

	t.incidents[incident.IncidentID] = cloneValue(incident)

	return nil
}

// ListIncidents returns the incidents of a run ordered by timestamp.
func (t *tx) ListIncidents(ctx context.Context, runID uuid.UUID) ([]*models.Incident, error) {
	var result []*models.Incident
	for _, incident := range t.incidents {
		if incident.RunID == runID {
			result = append(result, cloneValue(incident))
		}
	}

	slices.SortFunc(result, func(a, b *models.Incident) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	return result, nil
}

// CreateOccurrence appends an occurrence to a run.
func (t *tx) CreateOccurrence(ctx context.Context, occurrence *models.Occurrence) error {
	if _, exists := t.runs[occurrence.RunID]; !exists {
		return store.ErrRunNotFound
	}

	t.occurrences[occurrence.OccurrenceID] = cloneValue(occurrence)

	return nil
}

// ListOccurrences returns the occurrences of a run ordered by timestamp.
func (t *tx) ListOccurrences(ctx context.Context, runID uuid.UUID) ([]*models.Occurrence, error) {
	var result []*models.Occurrence
	for _, occurrence := range t.occurrences {
		if occurrence.RunID == runID {
			result = append(result, cloneValue(occurrence))
		}
	}

	slices.SortFunc(result, func(a, b *models.Occurrence) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	return result, nil
}
