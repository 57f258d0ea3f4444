package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Incident is a free-form report made by a guard during a run.
type Incident struct {
	IncidentID  uuid.UUID
	GuardID     uuid.UUID
	RunID       uuid.UUID
	Description string
	Timestamp   time.Time
}

// OccurrenceType classifies an occurrence.
type OccurrenceType string

const (
	OccurrencePerson OccurrenceType = "person"
	OccurrenceCar    OccurrenceType = "car"
)

// ParseOccurrenceType converts a string into an OccurrenceType.
func ParseOccurrenceType(s string) (OccurrenceType, error) {
	switch OccurrenceType(s) {
	case OccurrencePerson, OccurrenceCar:
		return OccurrenceType(s), nil
	}
	return "", fmt.Errorf("unknown occurrence type %q", s)
}

// Occurrence logs a person or vehicle entering the patrolled site during a run.
type Occurrence struct {
	OccurrenceID   uuid.UUID
	RunID          uuid.UUID
	Type           OccurrenceType
	Name           string
	DNI            string // national identity document number
	Motive         string
	Observation    string
	RemissionGuide string
	Bill           string
	DriverName     string // car only
	CarPlate       string // car only
	Timestamp      time.Time
}
