package models

import "time"

// Event represents a loggable action in the clinic.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`  // e.g., "patient.create", "appointment.update"
	Level     string    `json:"level"` // e.g., "info", "warn", "error"
	Message   string    `json:"message"`
	SubjectID *string   `json:"subjectId,omitempty"` // patient, appointment or user the event is about
	CreatedAt time.Time `json:"createdAt"`
}
