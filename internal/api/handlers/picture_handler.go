package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/kritin29/Patient-Management-Web-App/internal/forms"
	"github.com/kritin29/Patient-Management-Web-App/internal/services"
)

const maxPictureSize = 10 << 20

// PictureHandler handles patient picture uploads and downloads.
type PictureHandler struct {
	service services.PictureServiceProvider
}

// NewPictureHandler creates a new PictureHandler.
func NewPictureHandler(service services.PictureServiceProvider) *PictureHandler {
	return &PictureHandler{service: service}
}

// Upload stores the multipart "picture" file for a patient.
func (h *PictureHandler) Upload(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "id")
	r.Body = http.MaxBytesReader(w, r.Body, maxPictureSize+1<<20)
	if err := r.ParseMultipartForm(maxPictureSize); err != nil {
		http.Error(w, "Invalid multipart upload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("picture")
	if err != nil {
		writeFormError(w, forms.ValidationErrors{"picture": "picture is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Error().Err(err).Str("patient_id", patientID).Msg("Failed to read uploaded picture")
		http.Error(w, "Failed to read upload", http.StatusBadRequest)
		return
	}

	pic, err := h.service.AddPicture(r.Context(), patientID, header.Filename, data)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, pic)
	case errors.Is(err, services.ErrUnsupportedImage):
		writeFormError(w, forms.ValidationErrors{"picture": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		http.Error(w, "Patient not found", http.StatusNotFound)
	default:
		log.Error().Err(err).Str("patient_id", patientID).Msg("Failed to store picture")
		http.Error(w, "Failed to store picture", http.StatusInternalServerError)
	}
}

// GetAll lists picture metadata for a patient.
func (h *PictureHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "id")
	pictures, err := h.service.ListPictures(r.Context(), patientID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			http.Error(w, "Patient not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("patient_id", patientID).Msg("Failed to list pictures")
		http.Error(w, "Failed to retrieve pictures", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, pictures)
}

// Get serves the raw image bytes.
func (h *PictureHandler) Get(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "id")
	pictureID := chi.URLParam(r, "pictureID")
	pic, err := h.service.GetPicture(r.Context(), patientID, pictureID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			http.Error(w, "Picture not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("picture_id", pictureID).Msg("Failed to load picture")
		http.Error(w, "Failed to retrieve picture", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", pic.MimeType())
	w.Header().Set("Content-Length", strconv.Itoa(len(pic.Data)))
	w.Write(pic.Data)
}
