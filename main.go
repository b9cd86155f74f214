package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kritin29/Patient-Management-Web-App/internal/api"
	"github.com/kritin29/Patient-Management-Web-App/internal/auth"
	"github.com/kritin29/Patient-Management-Web-App/internal/config"
	"github.com/kritin29/Patient-Management-Web-App/internal/database"
	"github.com/kritin29/Patient-Management-Web-App/internal/logger"
	"github.com/kritin29/Patient-Management-Web-App/internal/mailer"
	"github.com/kritin29/Patient-Management-Web-App/internal/monitoring"
	"github.com/kritin29/Patient-Management-Web-App/internal/services"
	"github.com/kritin29/Patient-Management-Web-App/internal/session"
	"github.com/kritin29/Patient-Management-Web-App/internal/signup"
	"github.com/kritin29/Patient-Management-Web-App/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, !cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up session store
	var sessions session.Store
	var memSessions *session.MemoryStore
	switch cfg.SessionStore {
	case "redis":
		rs, err := session.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to redis")
		}
		defer rs.Close()
		sessions = rs
	default:
		memSessions = session.NewMemoryStore()
		sessions = memSessions
	}

	// Set up mailer
	var mail mailer.Sender = mailer.LogSender{}
	if cfg.MailDriver == "smtp" {
		mail = &mailer.SMTPSender{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.SMTPFrom,
		}
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run(ctx)

	// Set up services
	hasher := auth.BcryptHasher{}
	eventService := services.NewEventService(db, hub)
	userService := services.NewUserService(db, hasher, eventService)
	patientService := services.NewPatientService(db, eventService)
	pictureService := services.NewPictureService(db, patientService, eventService)
	appointmentService := services.NewAppointmentService(db, eventService)
	dashboardService := services.NewDashboardService(patientService, appointmentService)
	signupService := signup.NewService(userService, mail, hasher, cfg.OTPTTL)

	limiter := api.NewRateLimiter(cfg.AuthRatePerMin, cfg.AuthRateBurst)

	// Set up and run the background scheduler
	scheduler := monitoring.NewScheduler()
	if memSessions != nil {
		if err := scheduler.Add(monitoring.SessionPurgeJob(cfg.HousekeepingCron, memSessions, eventService)); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule session purge")
		}
	}
	if err := scheduler.Add(monitoring.Job{
		Name: "rate-limit-prune",
		Spec: cfg.HousekeepingCron,
		Run: func(context.Context) error {
			limiter.Purge()
			return nil
		},
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule rate limiter pruning")
	}
	schedulerDone := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(schedulerDone)
	}()

	// Set up router
	router := api.NewRouter(api.Deps{
		AllowedOrigins: cfg.AllowedOrigins,
		SecureCookies:  cfg.IsProduction(),
		Tokens:         auth.NewManager(cfg.JWTSecret),
		Sessions:       sessions,
		SessionTTL:     cfg.SessionTTL,
		Limiter:        limiter,
		Hub:            hub,
		Users:          userService,
		Signup:         signupService,
		Patients:       patientService,
		Pictures:       pictureService,
		Appointments:   appointmentService,
		Dashboard:      dashboardService,
		Events:         eventService,
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("env", cfg.Env).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	<-schedulerDone

	log.Info().Msg("Server exiting")
}
