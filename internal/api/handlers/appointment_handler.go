package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/kritin29/Patient-Management-Web-App/internal/forms"
	"github.com/kritin29/Patient-Management-Web-App/internal/scheduling"
	"github.com/kritin29/Patient-Management-Web-App/internal/services"
)

// ConflictMessage is shown when a booking overlaps an existing appointment.
const ConflictMessage = "There is already an appointment scheduled at that time. Please choose another time."

// AppointmentHandler handles HTTP requests for appointments.
type AppointmentHandler struct {
	service services.AppointmentServiceProvider
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(service services.AppointmentServiceProvider) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

// GetAll lists appointments, filtered by a date substring in search.
func (h *AppointmentHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	appointments, err := h.service.ListAppointments(r.Context(), search)
	if err != nil {
		log.Error().Err(err).Str("search", search).Msg("Failed to list appointments")
		http.Error(w, "Failed to retrieve appointments", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, appointments)
}

// Create books an appointment unless it overlaps another on the same date.
func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var form forms.AppointmentForm
	if err := forms.Bind(r, &form); err != nil {
		writeFormError(w, err)
		return
	}

	date, start, end := form.Slot()
	appt, err := h.service.CreateAppointment(r.Context(), form.PatientID, date, start, end)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, appt)
	case errors.Is(err, scheduling.ErrConflict):
		log.Info().Str("date", date).Str("start", start.String()).Str("end", end.String()).Msg("Appointment conflict")
		writeError(w, http.StatusConflict, ConflictMessage)
	case errors.Is(err, services.ErrNotFound):
		writeFormError(w, forms.ValidationErrors{"patient_id": "patient does not exist"})
	default:
		log.Error().Err(err).Str("patient_id", form.PatientID).Msg("Failed to create appointment")
		http.Error(w, "Failed to create appointment", http.StatusInternalServerError)
	}
}

// Get retrieves one appointment.
func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	appt, err := h.service.GetAppointmentByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			http.Error(w, "Appointment not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("appointment_id", id).Msg("Failed to get appointment")
		http.Error(w, "Failed to retrieve appointment", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// Update moves an appointment. It never conflicts with its own old slot.
func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var form forms.UpdateAppointmentForm
	if err := forms.Bind(r, &form); err != nil {
		writeFormError(w, err)
		return
	}

	date, start, end := form.Slot()
	appt, err := h.service.UpdateAppointment(r.Context(), id, date, start, end)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, appt)
	case errors.Is(err, scheduling.ErrConflict):
		log.Info().Str("appointment_id", id).Str("date", date).Msg("Appointment conflict on update")
		writeError(w, http.StatusConflict, ConflictMessage)
	case errors.Is(err, services.ErrNotFound):
		http.Error(w, "Appointment not found", http.StatusNotFound)
	default:
		log.Error().Err(err).Str("appointment_id", id).Msg("Failed to update appointment")
		http.Error(w, "Failed to update appointment", http.StatusInternalServerError)
	}
}
