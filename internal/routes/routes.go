package routes

import (
	"net/http"

	"github.com/kidneymate/server/internal/app"
	"github.com/kidneymate/server/internal/handler"
	"github.com/kidneymate/server/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	auth := handler.NewAuthHandler(app.AuthService)
	account := handler.NewAccountHandler(app.AuthService, app.UserService, app.ProfileService)
	tracking := handler.NewTrackingHandler(app.TrackingService, app.Metrics)
	medication := handler.NewMedicationHandler(app.MedicationService, app.Metrics)
	technician := handler.NewTechnicianHandler(app.RosterService, app.Metrics)
	report := handler.NewReportHandler(app.ReportService)
	scheme := handler.NewSchemeHandler(app.SchemeService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.Handle("GET /metrics", promhttp.HandlerFor(app.Metrics.Registry, promhttp.HandlerOpts{}))

	// Auth (rate limited)
	rateLimiter := middleware.RateLimitAuth()

	mux.HandleFunc("POST /api/auth/signup", rateLimiter(auth.Signup))
	mux.HandleFunc("POST /api/auth/login", rateLimiter(auth.Login))
	mux.HandleFunc("POST /api/auth/phone/send", rateLimiter(auth.SendPhoneCode))
	mux.HandleFunc("POST /api/auth/phone/verify", rateLimiter(auth.VerifyPhoneCode))
	mux.HandleFunc("POST /api/auth/logout", auth.Logout)

	// ============================================================================
	// PROTECTED ROUTES (/api/*)
	// ============================================================================

	// Account
	mux.HandleFunc("GET /api/me", middleware.RequireAuth(account.Me))
	mux.HandleFunc("PATCH /api/me/profile", middleware.RequireAuth(account.UpdateProfile))
	mux.HandleFunc("DELETE /api/me", middleware.RequireAuth(account.DeleteAccount))

	// Fluid & diet tracking
	mux.HandleFunc("GET /api/tracking/today", middleware.RequireAuth(tracking.Today))
	mux.HandleFunc("PUT /api/tracking/today", middleware.RequireAuth(tracking.SaveToday))
	mux.HandleFunc("GET /api/tracking/history", middleware.RequireAuth(tracking.History))
	mux.HandleFunc("GET /api/tracking/history/live", middleware.RequireAuth(tracking.HistoryLive))
	mux.HandleFunc("GET /api/tracking/{date}", middleware.RequireAuth(tracking.Today))

	// Medications
	mux.HandleFunc("GET /api/medications", middleware.RequireAuth(medication.List))
	mux.HandleFunc("POST /api/medications", middleware.RequireAuth(medication.Create))
	mux.HandleFunc("GET /api/medications/live", middleware.RequireAuth(medication.Live))
	mux.HandleFunc("DELETE /api/medications/{id}", middleware.RequireAuth(medication.Delete))

	// Dialysis scheduling
	mux.HandleFunc("GET /api/technicians", middleware.RequireAuth(technician.List))
	mux.HandleFunc("GET /api/technicians/live", middleware.RequireAuth(technician.Live))

	// Healthcare schemes
	mux.HandleFunc("GET /api/schemes", middleware.RequireAuth(scheme.List))
	mux.HandleFunc("GET /api/schemes/{slug}", middleware.RequireAuth(scheme.Get))

	// Reports
	mux.HandleFunc("GET /api/reports", middleware.RequireAuth(report.List))
	mux.HandleFunc("POST /api/reports", middleware.RequireAuth(report.Upload))
	mux.HandleFunc("GET /api/reports/{id}/file", middleware.RequireAuth(report.File))
	mux.HandleFunc("GET /api/reports/{id}/share", middleware.RequireAuth(report.Share))
	mux.HandleFunc("DELETE /api/reports/{id}", middleware.RequireAuth(report.Delete))

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.Config(app.Cfg), // Config must be first (needed by SecurityHeaders and CSRF cookies)
		middleware.SecurityHeaders,
		middleware.RequestLogging,
		middleware.Metrics(app.Metrics),
		middleware.CSRFProtection,
		middleware.AuthMiddleware(app.AuthService, app.UserService),
	)

	return handler
}
