package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used for appointment dates.
const DateLayout = "2006-01-02"

// TimeOfDay is a wall-clock time expressed in minutes after midnight.
type TimeOfDay int

// ParseTimeOfDay parses an "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Value stores the time as "HH:MM" text.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

func (t *TimeOfDay) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
	v, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Appointment occupies the half-open interval [StartTime, EndTime) on Date.
type Appointment struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patientId"`
	PatientName string    `json:"patientName,omitempty"`
	Date        string    `json:"date"` // DateLayout
	StartTime   TimeOfDay `json:"startTime"`
	EndTime     TimeOfDay `json:"endTime"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Dashboard is the clinic overview shown after sign in.
type Dashboard struct {
	PatientCount       int           `json:"patientCount"`
	AppointmentCount   int           `json:"appointmentCount"`
	TodaysAppointments []Appointment `json:"appointmentsForToday"`
}
