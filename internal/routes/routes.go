package routes

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/usetandem/tandem/internal/app"
	"github.com/usetandem/tandem/internal/handler"
	"github.com/usetandem/tandem/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	auth := handler.NewAuthHandler(app.AuthService, app.ProfileService)
	partnership := handler.NewPartnershipHandler(app.PartnershipService)
	template := handler.NewTemplateHandler(app.TemplateService)
	exercise := handler.NewExerciseHandler(app.ExerciseService)
	journal := handler.NewJournalHandler(app.JournalService)
	message := handler.NewMessageHandler(app.MessageService)
	milestone := handler.NewMilestoneHandler(app.MilestoneService)
	notification := handler.NewNotificationHandler(app.NotificationSettingsService, app.Cfg.VAPIDPublicKey)
	audio := handler.NewAudioHandler(app.AudioService)
	ws := handler.NewWSHandler(app.Registry, app.Cfg.AppURL)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /health", health.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Auth (rate limited)
	rateLimiter := middleware.RateLimitAuth()
	mux.HandleFunc("POST /auth/register", rateLimiter(auth.Register))
	mux.HandleFunc("POST /auth/login", rateLimiter(auth.Login))
	mux.HandleFunc("POST /auth/logout", auth.Logout)

	// ============================================================================
	// PROTECTED ROUTES (/app/*)
	// ============================================================================

	// Account
	mux.HandleFunc("GET /app/me", middleware.RequireAuth(auth.Me))
	mux.HandleFunc("PATCH /app/profile", middleware.RequireAuth(auth.UpdateProfile))

	// Partnership
	mux.HandleFunc("GET /app/partnership", middleware.RequireAuth(partnership.Current))
	mux.HandleFunc("POST /app/partnership/invites", middleware.RequireAuth(partnership.Invite))
	mux.HandleFunc("POST /app/partnership/invites/accept", middleware.RequireAuth(partnership.AcceptInvite))
	mux.HandleFunc("DELETE /app/partnership", middleware.RequireAuth(partnership.End))

	// Exercise templates
	mux.HandleFunc("GET /app/templates", middleware.RequireAuth(template.List))
	mux.HandleFunc("GET /app/templates/{id}", middleware.RequireAuth(template.Get))

	// Exercises
	mux.HandleFunc("POST /app/exercises", middleware.RequireAuth(exercise.Create))
	mux.HandleFunc("GET /app/exercises", middleware.RequireAuth(exercise.List))
	mux.HandleFunc("GET /app/exercises/{id}", middleware.RequireAuth(exercise.Get))
	mux.HandleFunc("GET /app/exercises/{id}/steps", middleware.RequireAuth(exercise.Steps))
	mux.HandleFunc("GET /app/exercises/{id}/responses", middleware.RequireAuth(exercise.Responses))
	mux.HandleFunc("POST /app/exercises/{id}/steps/{stepId}/responses", middleware.RequireAuth(exercise.SubmitResponse))
	mux.HandleFunc("PATCH /app/exercises/{id}/status", middleware.RequireAuth(exercise.UpdateStatus))
	mux.HandleFunc("PATCH /app/exercises/{id}/current-step", middleware.RequireAuth(exercise.UpdateCurrentStep))

	// Audio responses
	mux.HandleFunc("POST /app/audio/upload-url", middleware.RequireAuth(audio.UploadURL))
	mux.HandleFunc("GET /app/audio/download-url", middleware.RequireAuth(audio.DownloadURL))

	// Journal
	mux.HandleFunc("POST /app/journal", middleware.RequireAuth(journal.Create))
	mux.HandleFunc("GET /app/journal", middleware.RequireAuth(journal.List))
	mux.HandleFunc("GET /app/journal/{id}", middleware.RequireAuth(journal.Get))
	mux.HandleFunc("PUT /app/journal/{id}", middleware.RequireAuth(journal.Update))
	mux.HandleFunc("DELETE /app/journal/{id}", middleware.RequireAuth(journal.Delete))
	mux.HandleFunc("POST /app/journal/{id}/insight", middleware.RequireAuth(journal.GenerateInsight))

	// Messages
	mux.HandleFunc("POST /app/messages", middleware.RequireAuth(message.Send))
	mux.HandleFunc("GET /app/messages", middleware.RequireAuth(message.List))
	mux.HandleFunc("POST /app/messages/reframe", middleware.RequireAuth(message.Reframe))

	// Milestones
	mux.HandleFunc("POST /app/milestones", middleware.RequireAuth(milestone.Create))
	mux.HandleFunc("GET /app/milestones", middleware.RequireAuth(milestone.List))
	mux.HandleFunc("PUT /app/milestones/{id}", middleware.RequireAuth(milestone.Update))
	mux.HandleFunc("DELETE /app/milestones/{id}", middleware.RequireAuth(milestone.Delete))

	// Notification settings
	mux.HandleFunc("GET /app/notifications/preferences", middleware.RequireAuth(notification.Preferences))
	mux.HandleFunc("PUT /app/notifications/preferences", middleware.RequireAuth(notification.SetPreference))
	mux.HandleFunc("GET /app/notifications/vapid-key", middleware.RequireAuth(notification.VAPIDKey))
	mux.HandleFunc("POST /app/notifications/subscriptions", middleware.RequireAuth(notification.Subscribe))
	mux.HandleFunc("DELETE /app/notifications/subscriptions", middleware.RequireAuth(notification.Unsubscribe))

	// Live channel
	mux.HandleFunc("GET /app/ws", middleware.RequireAuth(ws.Connect))

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService, app.UserService, app.ProfileService),
	)
}
