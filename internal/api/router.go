package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kritin29/Patient-Management-Web-App/internal/api/handlers"
	"github.com/kritin29/Patient-Management-Web-App/internal/auth"
	"github.com/kritin29/Patient-Management-Web-App/internal/services"
	"github.com/kritin29/Patient-Management-Web-App/internal/session"
	"github.com/kritin29/Patient-Management-Web-App/internal/websocket"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	AllowedOrigins []string
	SecureCookies  bool

	Tokens     *auth.Manager
	Sessions   session.Store
	SessionTTL time.Duration
	Limiter    *RateLimiter
	Hub        *websocket.Hub

	Users        services.UserServiceProvider
	Signup       handlers.SignupService
	Patients     services.PatientServiceProvider
	Pictures     services.PictureServiceProvider
	Appointments services.AppointmentServiceProvider
	Dashboard    services.DashboardServiceProvider
	Events       services.EventServiceProvider
}

// NewRouter creates and configures a new Chi router.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(KeepPeer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := handlers.NewAuthHandler(d.Users, d.Signup, d.Tokens, d.SecureCookies)
	patientHandler := handlers.NewPatientHandler(d.Patients)
	pictureHandler := handlers.NewPictureHandler(d.Pictures)
	appointmentHandler := handlers.NewAppointmentHandler(d.Appointments)
	dashboardHandler := handlers.NewDashboardHandler(d.Dashboard)
	eventHandler := handlers.NewEventHandler(d.Events)
	wsHandler := handlers.NewWebSocketHandler(d.Hub, d.AllowedOrigins)

	limit := func(next http.Handler) http.Handler { return next }
	if d.Limiter != nil {
		limit = d.Limiter.Middleware
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(limit)
				r.Use(session.Middleware(d.Sessions, d.SessionTTL, d.SecureCookies))
				r.Post("/signup", authHandler.SignUp)
				r.Post("/signup/otp", authHandler.VerifyOTP)
				r.Post("/signin", authHandler.SignIn)
			})
			r.Post("/signout", authHandler.SignOut)
			r.With(d.Tokens.JWTMiddleware()).Get("/me", authHandler.GetMe)
		})

		// Everything below requires a signed-in user.
		r.Group(func(r chi.Router) {
			r.Use(d.Tokens.JWTMiddleware())

			r.Get("/ws", wsHandler.Serve)
			r.Get("/dashboard", dashboardHandler.Get)
			r.Get("/events", eventHandler.GetRecent)

			r.Route("/patients", func(r chi.Router) {
				r.Get("/", patientHandler.GetAll)
				r.Post("/", patientHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", patientHandler.Get)
					r.Put("/diagnosis", patientHandler.UpdateDiagnosis)
					r.Get("/pictures", pictureHandler.GetAll)
					r.Post("/pictures", pictureHandler.Upload)
					r.Get("/pictures/{pictureID}", pictureHandler.Get)
				})
			})

			r.Route("/appointments", func(r chi.Router) {
				r.Get("/", appointmentHandler.GetAll)
				r.Post("/", appointmentHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", appointmentHandler.Get)
					r.Put("/", appointmentHandler.Update)
				})
			})
		})
	})

	return r
}
