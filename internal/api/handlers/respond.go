package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/kritin29/Patient-Management-Web-App/internal/forms"
	"github.com/kritin29/Patient-Management-Web-App/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeFormError answers a Bind or Validate failure. Validation errors get
// 422 with a field map, undecodable bodies get 400.
func writeFormError(w http.ResponseWriter, err error) {
	var ve forms.ValidationErrors
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"errors": ve})
	case errors.Is(err, forms.ErrMalformed):
		http.Error(w, "Invalid request body", http.StatusBadRequest)
	default:
		log.Error().Err(err).Msg("Form validation failed unexpectedly")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// requestSession returns the session attached by session.Middleware.
func requestSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		log.Error().Str("path", r.URL.Path).Msg("No session on request")
		http.Error(w, "Session unavailable", http.StatusInternalServerError)
	}
	return sess, ok
}
