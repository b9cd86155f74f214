package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kritin29/Patient-Management-Web-App/internal/models"
	"github.com/kritin29/Patient-Management-Web-App/internal/scheduling"
)

// AppointmentServiceProvider defines the interface for appointment services.
type AppointmentServiceProvider interface {
	CreateAppointment(ctx context.Context, patientID, date string, start, end models.TimeOfDay) (models.Appointment, error)
	UpdateAppointment(ctx context.Context, id, date string, start, end models.TimeOfDay) (models.Appointment, error)
	GetAppointmentByID(ctx context.Context, id string) (models.Appointment, error)
	ListAppointments(ctx context.Context, search string) ([]models.Appointment, error)
	AppointmentsOn(ctx context.Context, date string) ([]models.Appointment, error)
	CountAppointments(ctx context.Context) (int, error)
}

// AppointmentService books appointments, refusing any that overlap an
// existing booking on the same date.
type AppointmentService struct {
	db     *sql.DB
	events EventServiceProvider
}

// NewAppointmentService creates a new AppointmentService. events may be nil.
func NewAppointmentService(db *sql.DB, events EventServiceProvider) *AppointmentService {
	return &AppointmentService{db: db, events: events}
}

const appointmentSelect = `SELECT a.id, a.patient_id, p.name, a.date, a.start_time, a.end_time, a.created_at, a.updated_at
	FROM appointments a JOIN patients p ON p.id = a.patient_id`

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func queryAppointments(ctx context.Context, q querier, where string, args ...interface{}) ([]models.Appointment, error) {
	rows, err := q.QueryContext(ctx, appointmentSelect+" "+where+" ORDER BY a.date, a.start_time", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appointments := []models.Appointment{}
	for rows.Next() {
		var a models.Appointment
		if err := rows.Scan(&a.ID, &a.PatientID, &a.PatientName, &a.Date, &a.StartTime, &a.EndTime, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}

func getAppointment(ctx context.Context, q querier, id string) (models.Appointment, error) {
	found, err := queryAppointments(ctx, q, "WHERE a.id = ?", id)
	if err != nil {
		return models.Appointment{}, err
	}
	if len(found) == 0 {
		return models.Appointment{}, fmt.Errorf("appointment %s: %w", id, ErrNotFound)
	}
	return found[0], nil
}

// checkSlot loads the bookings on date, minus excludeID, and runs the
// conflict check against them.
func checkSlot(ctx context.Context, q querier, date string, start, end models.TimeOfDay, excludeID string) error {
	existing, err := queryAppointments(ctx, q, "WHERE a.date = ? AND a.id != ?", date, excludeID)
	if err != nil {
		return err
	}
	if scheduling.CheckConflict(date, start, end, existing) {
		return fmt.Errorf("%s %s-%s: %w", date, start, end, scheduling.ErrConflict)
	}
	return nil
}

// CreateAppointment books [start,end) on date for an existing patient. It
// returns an error wrapping scheduling.ErrConflict if the slot overlaps
// another appointment.
func (s *AppointmentService) CreateAppointment(ctx context.Context, patientID, date string, start, end models.TimeOfDay) (models.Appointment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Appointment{}, err
	}
	defer tx.Rollback()

	var patientName string
	err = tx.QueryRowContext(ctx, "SELECT name FROM patients WHERE id = ?", patientID).Scan(&patientName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Appointment{}, fmt.Errorf("patient %s: %w", patientID, ErrNotFound)
		}
		return models.Appointment{}, err
	}

	if err := checkSlot(ctx, tx, date, start, end, ""); err != nil {
		return models.Appointment{}, err
	}

	id := uuid.New().String()
	_, err = tx.ExecContext(ctx,
		"INSERT INTO appointments (id, patient_id, date, start_time, end_time) VALUES (?, ?, ?, ?, ?)",
		id, patientID, date, start, end)
	if err != nil {
		return models.Appointment{}, fmt.Errorf("failed to insert appointment: %w", err)
	}
	appt, err := getAppointment(ctx, tx, id)
	if err != nil {
		return models.Appointment{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Appointment{}, err
	}

	log.Info().Str("appointment_id", id).Str("date", date).Msg("Appointment booked")
	recordEvent(ctx, s.events, "appointment.create", "info",
		fmt.Sprintf("Appointment for '%s' on %s at %s-%s.", patientName, date, start, end), id)
	return appt, nil
}

// UpdateAppointment moves an appointment. The appointment being edited is
// left out of the conflict check.
func (s *AppointmentService) UpdateAppointment(ctx context.Context, id, date string, start, end models.TimeOfDay) (models.Appointment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Appointment{}, err
	}
	defer tx.Rollback()

	if _, err := getAppointment(ctx, tx, id); err != nil {
		return models.Appointment{}, err
	}
	if err := checkSlot(ctx, tx, date, start, end, id); err != nil {
		return models.Appointment{}, err
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE appointments SET date = ?, start_time = ?, end_time = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		date, start, end, id)
	if err != nil {
		return models.Appointment{}, err
	}
	appt, err := getAppointment(ctx, tx, id)
	if err != nil {
		return models.Appointment{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Appointment{}, err
	}

	recordEvent(ctx, s.events, "appointment.update", "info",
		fmt.Sprintf("Appointment for '%s' moved to %s at %s-%s.", appt.PatientName, date, start, end), id)
	return appt, nil
}

// GetAppointmentByID retrieves a single appointment.
func (s *AppointmentService) GetAppointmentByID(ctx context.Context, id string) (models.Appointment, error) {
	return getAppointment(ctx, s.db, id)
}

// ListAppointments returns all appointments, or those whose date contains
// search.
func (s *AppointmentService) ListAppointments(ctx context.Context, search string) ([]models.Appointment, error) {
	if search == "" {
		return queryAppointments(ctx, s.db, "")
	}
	return queryAppointments(ctx, s.db, "WHERE a.date LIKE ?", "%"+search+"%")
}

// AppointmentsOn returns the appointments booked on date.
func (s *AppointmentService) AppointmentsOn(ctx context.Context, date string) ([]models.Appointment, error) {
	return queryAppointments(ctx, s.db, "WHERE a.date = ?", date)
}

func (s *AppointmentService) CountAppointments(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM appointments").Scan(&n)
	return n, err
}
