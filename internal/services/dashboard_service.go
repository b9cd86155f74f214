package services

import (
	"context"
	"time"

	"github.com/kritin29/Patient-Management-Web-App/internal/models"
)

// DashboardServiceProvider defines the interface for the dashboard.
type DashboardServiceProvider interface {
	GetDashboard(ctx context.Context) (models.Dashboard, error)
}

// DashboardService assembles the clinic overview.
type DashboardService struct {
	patients     PatientServiceProvider
	appointments AppointmentServiceProvider
	now          func() time.Time
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(patients PatientServiceProvider, appointments AppointmentServiceProvider) *DashboardService {
	return &DashboardService{patients: patients, appointments: appointments, now: time.Now}
}

// GetDashboard returns counts and the appointments booked for today.
func (s *DashboardService) GetDashboard(ctx context.Context) (models.Dashboard, error) {
	var d models.Dashboard
	var err error
	if d.PatientCount, err = s.patients.CountPatients(ctx); err != nil {
		return d, err
	}
	if d.AppointmentCount, err = s.appointments.CountAppointments(ctx); err != nil {
		return d, err
	}
	d.TodaysAppointments, err = s.appointments.AppointmentsOn(ctx, s.now().Format(models.DateLayout))
	return d, err
}
