package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/kritin29/Patient-Management-Web-App/internal/services"
)

// DashboardHandler serves the clinic overview.
type DashboardHandler struct {
	service services.DashboardServiceProvider
}

func NewDashboardHandler(service services.DashboardServiceProvider) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.GetDashboard(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to build dashboard")
		http.Error(w, "Failed to retrieve dashboard", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}
