package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kritin29/Patient-Management-Web-App/internal/models"
)

// PatientServiceProvider defines the interface for patient services.
type PatientServiceProvider interface {
	CreatePatient(ctx context.Context, userID, name string, age int, gender, diagnosis string) (models.Patient, error)
	GetPatientByID(ctx context.Context, id string) (models.Patient, error)
	ListPatients(ctx context.Context, search string) ([]models.Patient, error)
	UpdateDiagnosis(ctx context.Context, id, diagnosis string) (models.Patient, error)
	CountPatients(ctx context.Context) (int, error)
}

// PatientService provides business logic for patient records.
type PatientService struct {
	db     *sql.DB
	events EventServiceProvider
}

// NewPatientService creates a new PatientService. events may be nil.
func NewPatientService(db *sql.DB, events EventServiceProvider) *PatientService {
	return &PatientService{db: db, events: events}
}

const patientColumns = "id, user_id, name, age, gender, COALESCE(diagnosis, ''), created_at"

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPatient(row rowScanner) (models.Patient, error) {
	var p models.Patient
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Age, &p.Gender, &p.Diagnosis, &p.CreatedAt)
	return p, err
}

// CreatePatient adds a patient on behalf of userID.
func (s *PatientService) CreatePatient(ctx context.Context, userID, name string, age int, gender, diagnosis string) (models.Patient, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO patients (id, user_id, name, age, gender, diagnosis) VALUES (?, ?, ?, ?, ?, ?)",
		id, userID, name, age, gender, diagnosis)
	if err != nil {
		return models.Patient{}, fmt.Errorf("failed to insert patient: %w", err)
	}

	patient, err := s.GetPatientByID(ctx, id)
	if err != nil {
		return models.Patient{}, err
	}
	recordEvent(ctx, s.events, "patient.create", "info", fmt.Sprintf("Patient '%s' added.", name), id)
	return patient, nil
}

// GetPatientByID retrieves a single patient.
func (s *PatientService) GetPatientByID(ctx context.Context, id string) (models.Patient, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+patientColumns+" FROM patients WHERE id = ?", id)
	p, err := scanPatient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Patient{}, fmt.Errorf("patient %s: %w", id, ErrNotFound)
		}
		return models.Patient{}, err
	}
	return p, nil
}

// ListPatients returns all patients, or those whose name, gender or age
// contains search (case-insensitive).
func (s *PatientService) ListPatients(ctx context.Context, search string) ([]models.Patient, error) {
	query := "SELECT " + patientColumns + " FROM patients"
	var args []interface{}
	if search != "" {
		like := "%" + search + "%"
		query += " WHERE name LIKE ? OR gender LIKE ? OR CAST(age AS TEXT) LIKE ?"
		args = append(args, like, like, like)
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patients := []models.Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

// UpdateDiagnosis replaces a patient's diagnosis.
func (s *PatientService) UpdateDiagnosis(ctx context.Context, id, diagnosis string) (models.Patient, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE patients SET diagnosis = ? WHERE id = ?", diagnosis, id)
	if err != nil {
		return models.Patient{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Patient{}, fmt.Errorf("patient %s: %w", id, ErrNotFound)
	}

	patient, err := s.GetPatientByID(ctx, id)
	if err != nil {
		return models.Patient{}, err
	}
	recordEvent(ctx, s.events, "patient.update", "info", fmt.Sprintf("Diagnosis updated for '%s'.", patient.Name), id)
	return patient, nil
}

func (s *PatientService) CountPatients(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM patients").Scan(&n)
	return n, err
}
