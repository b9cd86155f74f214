package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/kritin29/Patient-Management-Web-App/internal/auth"
	"github.com/kritin29/Patient-Management-Web-App/internal/forms"
	"github.com/kritin29/Patient-Management-Web-App/internal/services"
)

// PatientHandler handles HTTP requests for patient records.
type PatientHandler struct {
	service services.PatientServiceProvider
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(service services.PatientServiceProvider) *PatientHandler {
	return &PatientHandler{service: service}
}

// GetAll lists patients, filtered by the optional search query parameter.
func (h *PatientHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	patients, err := h.service.ListPatients(r.Context(), search)
	if err != nil {
		log.Error().Err(err).Str("search", search).Msg("Failed to list patients")
		http.Error(w, "Failed to retrieve patients", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, patients)
}

// Create adds a patient recorded against the signed-in user.
func (h *PatientHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	var form forms.AddPatientForm
	if err := forms.Bind(r, &form); err != nil {
		writeFormError(w, err)
		return
	}

	patient, err := h.service.CreatePatient(r.Context(), claims.UserID, form.Name, *form.Age, form.Gender, form.Diagnosis)
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to create patient")
		http.Error(w, "Failed to create patient", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, patient)
}

// Get retrieves one patient.
func (h *PatientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	patient, err := h.service.GetPatientByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			http.Error(w, "Patient not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("patient_id", id).Msg("Failed to get patient")
		http.Error(w, "Failed to retrieve patient", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, patient)
}

// UpdateDiagnosis replaces a patient's diagnosis.
func (h *PatientHandler) UpdateDiagnosis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var form forms.UpdateDiagnosisForm
	if err := forms.Bind(r, &form); err != nil {
		writeFormError(w, err)
		return
	}

	patient, err := h.service.UpdateDiagnosis(r.Context(), id, form.Diagnosis)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			http.Error(w, "Patient not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("patient_id", id).Msg("Failed to update diagnosis")
		http.Error(w, "Failed to update diagnosis", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, patient)
}
