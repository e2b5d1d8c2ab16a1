package app

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/usetandem/tandem/internal/config"
	"github.com/usetandem/tandem/internal/db"
	"github.com/usetandem/tandem/internal/notify"
	"github.com/usetandem/tandem/internal/realtime"
	"github.com/usetandem/tandem/internal/repository"
	"github.com/usetandem/tandem/internal/service"
	"github.com/usetandem/tandem/internal/storage"
)

type App struct {
	Cfg        *config.Config
	DB         *sqlx.DB
	Registry   realtime.Registry
	Dispatcher *notify.Dispatcher

	AuthService                 *service.AuthService
	UserService                 *service.UserService
	ProfileService              *service.ProfileService
	EmailService                *service.EmailService
	PartnershipService          *service.PartnershipService
	TemplateService             *service.TemplateService
	ExerciseService             *service.ExerciseService
	JournalService              *service.JournalService
	MessageService              *service.MessageService
	MilestoneService            *service.MilestoneService
	NotificationSettingsService *service.NotificationSettingsService
	AudioService                *service.AudioService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	profileRepository := repository.NewProfileRepository(database)
	partnershipRepository := repository.NewPartnershipRepository(database)
	inviteRepository := repository.NewInviteRepository(database)
	exerciseRepository := repository.NewExerciseRepository(database)
	stepRepository := repository.NewExerciseStepRepository(database)
	responseRepository := repository.NewExerciseResponseRepository(database)
	templateRepository := repository.NewExerciseTemplateRepository(database)
	journalRepository := repository.NewJournalRepository(database)
	messageRepository := repository.NewMessageRepository(database)
	milestoneRepository := repository.NewMilestoneRepository(database)
	preferenceRepository := repository.NewNotificationPreferenceRepository(database)
	subscriptionRepository := repository.NewPushSubscriptionRepository(database)

	// Live connection registry and notification dispatch
	registry := realtime.NewRegistry()

	// A nil *WebPushSender must become a nil interface, otherwise the
	// dispatcher's nil check never fires.
	var pushSender notify.PushSender
	webPush := notify.NewWebPushSender(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.PushSubscriber)
	if webPush != nil {
		pushSender = webPush
	}

	dispatcher := notify.NewDispatcher(registry, preferenceRepository, subscriptionRepository, pushSender, cfg.AppURL)

	// Audio blob storage (optional in development)
	var blobStore storage.BlobStore
	if cfg.S3Bucket != "" {
		blobStore, err = storage.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %v", err)
		}
	} else {
		slog.Info("audio storage disabled, S3_BUCKET not configured")
	}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	textGenerator := service.NewTextGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.IsDevelopment())

	authService := service.NewAuthService(
		userRepository,
		profileRepository,
		cfg.JWTSecret,
		cfg.JWTExpiry,
		cfg.IsProduction(),
	)
	userService := service.NewUserService(userRepository)
	profileService := service.NewProfileService(profileRepository)
	partnershipService := service.NewPartnershipService(partnershipRepository, inviteRepository, emailService, cfg.InviteExpiry)
	templateService := service.NewTemplateService(templateRepository, stepRepository)
	exerciseService := service.NewExerciseService(
		exerciseRepository,
		stepRepository,
		responseRepository,
		partnershipService,
		templateService,
		dispatcher,
	)
	journalService := service.NewJournalService(journalRepository, textGenerator)
	messageService := service.NewMessageService(messageRepository, partnershipService, dispatcher, textGenerator)
	milestoneService := service.NewMilestoneService(milestoneRepository, partnershipService, dispatcher)
	settingsService := service.NewNotificationSettingsService(preferenceRepository, subscriptionRepository)
	audioService := service.NewAudioService(blobStore)

	return &App{
		Cfg:        cfg,
		DB:         database,
		Registry:   registry,
		Dispatcher: dispatcher,

		AuthService:                 authService,
		UserService:                 userService,
		ProfileService:              profileService,
		EmailService:                emailService,
		PartnershipService:          partnershipService,
		TemplateService:             templateService,
		ExerciseService:             exerciseService,
		JournalService:              journalService,
		MessageService:              messageService,
		MilestoneService:            milestoneService,
		NotificationSettingsService: settingsService,
		AudioService:                audioService,
	}, nil
}

func (a *App) Close() error {
	// Let queued push deliveries drain before the process exits.
	a.Dispatcher.Flush()

	return db.Close(a.DB)
}
