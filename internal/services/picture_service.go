package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kritin29/Patient-Management-Web-App/internal/models"
)

// ErrUnsupportedImage is returned for uploads that are not jpg, jpeg or png.
var ErrUnsupportedImage = errors.New("only jpg, jpeg and png images are allowed")

var allowedImageTypes = map[string]bool{"jpg": true, "jpeg": true, "png": true}

// ImageType returns the lower-cased extension of filename if it is an
// accepted picture type.
func ImageType(filename string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if !allowedImageTypes[ext] {
		return "", ErrUnsupportedImage
	}
	return ext, nil
}

// PictureServiceProvider defines the interface for picture services.
type PictureServiceProvider interface {
	AddPicture(ctx context.Context, patientID, filename string, data []byte) (models.Picture, error)
	ListPictures(ctx context.Context, patientID string) ([]models.Picture, error)
	GetPicture(ctx context.Context, patientID, pictureID string) (models.Picture, error)
}

// PictureService stores patient images in the database.
type PictureService struct {
	db       *sql.DB
	patients PatientServiceProvider
	events   EventServiceProvider
}

// NewPictureService creates a new PictureService. events may be nil.
func NewPictureService(db *sql.DB, patients PatientServiceProvider, events EventServiceProvider) *PictureService {
	return &PictureService{db: db, patients: patients, events: events}
}

// AddPicture attaches an image to an existing patient.
func (s *PictureService) AddPicture(ctx context.Context, patientID, filename string, data []byte) (models.Picture, error) {
	imageType, err := ImageType(filename)
	if err != nil {
		return models.Picture{}, err
	}
	patient, err := s.patients.GetPatientByID(ctx, patientID)
	if err != nil {
		return models.Picture{}, err
	}

	pic := models.Picture{
		ID:        uuid.New().String(),
		PatientID: patientID,
		ImageType: imageType,
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO pictures (id, patient_id, image_data, image_type) VALUES (?, ?, ?, ?)",
		pic.ID, pic.PatientID, data, pic.ImageType)
	if err != nil {
		return models.Picture{}, fmt.Errorf("failed to insert picture: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT created_at FROM pictures WHERE id = ?", pic.ID).Scan(&pic.CreatedAt); err != nil {
		return models.Picture{}, err
	}

	recordEvent(ctx, s.events, "picture.create", "info", fmt.Sprintf("Picture added for '%s'.", patient.Name), patientID)
	return pic, nil
}

// ListPictures returns picture metadata for a patient, oldest first.
func (s *PictureService) ListPictures(ctx context.Context, patientID string) ([]models.Picture, error) {
	if _, err := s.patients.GetPatientByID(ctx, patientID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, patient_id, image_type, created_at FROM pictures WHERE patient_id = ? ORDER BY created_at, rowid", patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pictures := []models.Picture{}
	for rows.Next() {
		var p models.Picture
		if err := rows.Scan(&p.ID, &p.PatientID, &p.ImageType, &p.CreatedAt); err != nil {
			return nil, err
		}
		pictures = append(pictures, p)
	}
	return pictures, rows.Err()
}

// GetPicture loads a picture including its bytes.
func (s *PictureService) GetPicture(ctx context.Context, patientID, pictureID string) (models.Picture, error) {
	var p models.Picture
	row := s.db.QueryRowContext(ctx,
		"SELECT id, patient_id, image_type, image_data, created_at FROM pictures WHERE id = ? AND patient_id = ?",
		pictureID, patientID)
	if err := row.Scan(&p.ID, &p.PatientID, &p.ImageType, &p.Data, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Picture{}, fmt.Errorf("picture %s: %w", pictureID, ErrNotFound)
		}
		return models.Picture{}, err
	}
	return p, nil
}
