package services

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kritin29/Patient-Management-Web-App/internal/models"
)

// EventPublisher pushes stored events to live listeners.
type EventPublisher interface {
	Publish(event models.Event)
}

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(ctx context.Context, eventType, level, message string, subjectID *string) (models.Event, error)
	GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error)
}

// EventService provides business logic for event management.
type EventService struct {
	db        *sql.DB
	publisher EventPublisher
}

// NewEventService creates a new EventService. publisher may be nil.
func NewEventService(db *sql.DB, publisher EventPublisher) *EventService {
	return &EventService{db: db, publisher: publisher}
}

// CreateEvent logs a new event to the database and publishes it.
func (s *EventService) CreateEvent(ctx context.Context, eventType, level, message string, subjectID *string) (models.Event, error) {
	event := models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Level:     level,
		Message:   message,
		SubjectID: subjectID,
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (id, type, level, message, subject_id) VALUES (?, ?, ?, ?, ?)",
		event.ID, event.Type, event.Level, event.Message, event.SubjectID)
	if err != nil {
		return models.Event{}, err
	}
	err = s.db.QueryRowContext(ctx, "SELECT created_at FROM events WHERE id = ?", event.ID).Scan(&event.CreatedAt)
	if err != nil {
		return models.Event{}, err
	}

	if s.publisher != nil {
		s.publisher.Publish(event)
	}
	return event, nil
}

// GetRecentEvents retrieves the most recent events from the database.
func (s *EventService) GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, type, level, message, subject_id, created_at FROM events ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.SubjectID, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// recordEvent stores an activity event. Failures are logged; the mutation
// that triggered the event has already succeeded.
func recordEvent(ctx context.Context, events EventServiceProvider, eventType, level, message, subjectID string) {
	if events == nil {
		return
	}
	if _, err := events.CreateEvent(ctx, eventType, level, message, &subjectID); err != nil {
		log.Error().Err(err).Str("type", eventType).Str("subject_id", subjectID).Msg("Failed to record event")
	}
}
