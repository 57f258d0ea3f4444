package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/patrol/internal/models"
)

// CreateIncident appends an incident to a run.
func (s *txStore) CreateIncident(ctx context.Context, incident *models.Incident) error {
	_, err := s.tx.Exec(ctx, `
		INSERT INTO incidents (incident_id, guard_id, run_id, description, ts)
		VALUES ($1, $2, $3, $4, $5)
	`, incident.IncidentID, incident.GuardID, incident.RunID, incident.Description, incident.Timestamp)
	if err != nil {
		return mapPostgresError(fmt.Errorf("failed to create incident: %w", err))
	}

	log.Debug().
		Str("incident_id", incident.IncidentID.String()).
		Str("run_id", incident.RunID.String()).
		Msg("Created incident")

	return nil
}

// ListIncidents returns the incidents of a run ordered by timestamp.
func (s *txStore) ListIncidents(ctx context.Context, runID uuid.UUID) ([]*models.Incident, error) {
	rows, err := s.tx.Query(ctx, `
		SELECT incident_id, guard_id, run_id, description, ts
		FROM incidents
		WHERE run_id = $1
		ORDER BY ts, incident_id
	`, runID)
	if err != nil {
		return nil, mapPostgresError(fmt.Errorf("failed to list incidents: %w", err))
	}
	defer rows.Close()

	var incidents []*models.Incident
	for rows.Next() {
		var incident models.Incident
		if err := rows.Scan(
			&incident.IncidentID,
			&incident.GuardID,
			&incident.RunID,
			&incident.Description,
			&incident.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		incidents = append(incidents, &incident)
	}

	if err := rows.Err(); err != nil {
		return nil, mapPostgresError(fmt.Errorf("error iterating incidents: %w", err))
	}

	return incidents, nil
}

// CreateOccurrence appends an occurrence to a run.
func (s *txStore) CreateOccurrence(ctx context.Context, occurrence *models.Occurrence) error {
	_, err := s.tx.Exec(ctx, `
		INSERT INTO occurrences (
			occurrence_id, run_id, type, name, dni, motive, observation,
			remission_guide, bill, driver_name, car_plate, ts
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`,
		occurrence.OccurrenceID,
		occurrence.RunID,
		string(occurrence.Type),
		occurrence.Name,
		occurrence.DNI,
		occurrence.Motive,
		occurrence.Observation,
		occurrence.RemissionGuide,
		occurrence.Bill,
		occurrence.DriverName,
		occurrence.CarPlate,
		occurrence.Timestamp,
	)
	if err != nil {
		return mapPostgresError(fmt.Errorf("failed to create occurrence: %w", err))
	}

	log.Debug().
		Str("occurrence_id", occurrence.OccurrenceID.String()).
		Str("run_id", occurrence.RunID.String()).
		Str("type", string(occurrence.Type)).
		Msg("Created occurrence")

	return nil
}

// ListOccurrences returns the occurrences of a run ordered by timestamp.
func (s *txStore) ListOccurrences(ctx context.Context, runID uuid.UUID) ([]*models.Occurrence, error) {
	rows, err := s.tx.Query(ctx, `
		SELECT occurrence_id, run_id, type, name, dni, motive, observation,
			remission_guide, bill, driver_name, car_plate, ts
		FROM occurrences
		WHERE run_id = $1
		ORDER BY ts, occurrence_id
	`, runID)
	if err != nil {
		return nil, mapPostgresError(fmt.Errorf("failed to list occurrences: %w", err))
	}
	defer rows.Close()

	var occurrences []*models.Occurrence
	for rows.Next() {
		var o models.Occurrence
		if err := rows.Scan(
			&o.OccurrenceID,
			&o.RunID,
			&o.Type,
			&o.Name,
			&o.DNI,
			&o.Motive,
			&o.Observation,
			&o.RemissionGuide,
			&o.Bill,
			&o.DriverName,
			&o.CarPlate,
			&o.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan occurrence: %w", err)
		}
		occurrences = append(occurrences, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, mapPostgresError(fmt.Errorf("error iterating occurrences: %w", err))
	}

	return occurrences, nil
}
