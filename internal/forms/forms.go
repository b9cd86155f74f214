package forms

import "github.com/kritin29/Patient-Management-Web-App/internal/models"

type SignUpForm struct {
	Username        string `json:"username" validate:"required,min=4,max=16"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=32"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type SignInForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type OTPForm struct {
	OTP string `json:"otp" validate:"required"`
}

type AddPatientForm struct {
	Name      string `json:"name" validate:"required,min=2,max=50"`
	Gender    string `json:"gender" validate:"required,oneof=male female other"`
	Age       *int   `json:"age" validate:"required,min=0,max=150"`
	Diagnosis string `json:"diagnosis"`
}

type UpdateDiagnosisForm struct {
	Diagnosis string `json:"diagnosis" validate:"required"`
}

// AppointmentForm books a new appointment.
type AppointmentForm struct {
	PatientID string `json:"patient_id" validate:"required"`
	Date      string `json:"date" validate:"required,dateformat"`
	StartTime string `json:"start_time" validate:"required,timeformat"`
	EndTime   string `json:"end_time" validate:"required,timeformat"`
}

// Slot returns the parsed times. Call only after Validate succeeded.
func (f AppointmentForm) Slot() (date string, start, end models.TimeOfDay) {
	return slot(f.Date, f.StartTime, f.EndTime)
}

// UpdateAppointmentForm moves an existing appointment.
type UpdateAppointmentForm struct {
	Date      string `json:"date" validate:"required,dateformat"`
	StartTime string `json:"start_time" validate:"required,timeformat"`
	EndTime   string `json:"end_time" validate:"required,timeformat"`
}

func (f UpdateAppointmentForm) Slot() (date string, start, end models.TimeOfDay) {
	return slot(f.Date, f.StartTime, f.EndTime)
}

func slot(date, start, end string) (string, models.TimeOfDay, models.TimeOfDay) {
	s, _ := models.ParseTimeOfDay(start)
	e, _ := models.ParseTimeOfDay(end)
	return date, s, e
}
