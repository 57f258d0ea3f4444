package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Shift tags a guard assignment.
type Shift string

const (
	ShiftDay     Shift = "day"
	ShiftNight   Shift = "night"
	ShiftWeekend Shift = "weekend"
)

// ParseShift converts a string into a Shift.
func ParseShift(s string) (Shift, error) {
	switch Shift(s) {
	case ShiftDay, ShiftNight, ShiftWeekend:
		return Shift(s), nil
	}
	return "", fmt.Errorf("unknown shift %q", s)
}

// GuardAssignment binds one guard to one route. GuardID is unique.
type GuardAssignment struct {
	AssignmentID uuid.UUID
	GuardID      uuid.UUID
	RouteID      uuid.UUID
	Shift        Shift
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
