package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/kidneymate/server/internal/config"
	"github.com/kidneymate/server/internal/db"
	"github.com/kidneymate/server/internal/live"
	"github.com/kidneymate/server/internal/metrics"
	"github.com/kidneymate/server/internal/repository"
	"github.com/kidneymate/server/internal/service"
	"github.com/kidneymate/server/internal/storage"
)

type App struct {
	Cfg               *config.Config
	DB                *sqlx.DB
	Hub               *live.Hub
	Metrics           *metrics.Metrics
	AuthService       *service.AuthService
	UserService       *service.UserService
	ProfileService    *service.ProfileService
	TrackingService   *service.TrackingService
	MedicationService *service.MedicationService
	ReminderService   *service.ReminderService
	RosterService     *service.RosterService
	ReportService     *service.ReportService
	SchemeService     *service.SchemeService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	profileRepository := repository.NewProfileRepository(database)
	verificationRepository := repository.NewPhoneVerificationRepository(database)
	trackingRepository := repository.NewTrackingRepository(database)
	medicationRepository := repository.NewMedicationRepository(database)
	technicianRepository := repository.NewTechnicianRepository(database)
	reportRepository := repository.NewReportRepository(database)

	// Storage
	fileStorage, err := storage.New(cfg)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	hub := live.NewHub()
	m := metrics.New()

	// Messaging. Development logs SMS instead of publishing to SNS.
	var snsClient service.SNSPublisher
	if !cfg.IsDevelopment() {
		client, err := service.NewSNSClient(context.Background(), cfg.AWSRegion)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to initialize sms: %w", err)
		}
		snsClient = client
	}
	smsService := service.NewSMSService(snsClient, cfg.SMSSenderID, cfg.IsDevelopment())
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)

	// Services
	authService := service.NewAuthService(
		userRepository,
		profileRepository,
		verificationRepository,
		emailService,
		smsService,
		cfg.AppName,
		cfg.JWTSecret,
		cfg.IsProduction(),
		cfg.JWTExpiry,
		cfg.PhoneCodeExpiry,
	)
	reportService := service.NewReportService(reportRepository, fileStorage, m, cfg.AppURL, cfg.ReportShareExpiry)
	userService := service.NewUserService(userRepository, profileRepository, reportService)
	profileService := service.NewProfileService(profileRepository)
	trackingService := service.NewTrackingService(trackingRepository, hub, m)
	medicationService := service.NewMedicationService(medicationRepository, hub)
	reminderService := service.NewReminderService(
		medicationRepository,
		userRepository,
		profileRepository,
		emailService,
		smsService,
		m,
		cfg.AppName,
		cfg.ReminderLocation(),
	)
	rosterService := service.NewRosterService(technicianRepository, hub)

	schemeService := service.NewSchemeService(cfg.ContentPath)
	err = schemeService.Load()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to load schemes: %w", err)
	}

	return &App{
		Cfg:               cfg,
		DB:                database,
		Hub:               hub,
		Metrics:           m,
		AuthService:       authService,
		UserService:       userService,
		ProfileService:    profileService,
		TrackingService:   trackingService,
		MedicationService: medicationService,
		ReminderService:   reminderService,
		RosterService:     rosterService,
		ReportService:     reportService,
		SchemeService:     schemeService,
	}, nil
}

func (a *App) Close() error {
	if a.ReminderService != nil {
		a.ReminderService.Stop()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
