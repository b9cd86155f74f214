package models

import "time"

// Patient is a clinic patient record.
type Patient struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"` // account that created the record
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Gender    string    `json:"gender"`
	Diagnosis string    `json:"diagnosis"`
	CreatedAt time.Time `json:"createdAt"`
}

// Picture is an image attached to a patient. Data is only loaded when the
// raw image is requested.
type Picture struct {
	ID        string    `json:"id"`
	PatientID string    `json:"patientId"`
	ImageType string    `json:"imageType"` // jpg, jpeg, png
	Data      []byte    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// MimeType returns the content type used when serving the picture.
func (p Picture) MimeType() string {
	if p.ImageType == "jpg" {
		return "image/jpeg"
	}
	return "image/" + p.ImageType
}
