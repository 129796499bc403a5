package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/volunteer-hub-api/internal/handler"
	"github.com/noah-isme/volunteer-hub-api/internal/repository"
	"github.com/noah-isme/volunteer-hub-api/internal/service"
	"github.com/noah-isme/volunteer-hub-api/pkg/cache"
	"github.com/noah-isme/volunteer-hub-api/pkg/config"
	"github.com/noah-isme/volunteer-hub-api/pkg/database"
	"github.com/noah-isme/volunteer-hub-api/pkg/mailer"
	"github.com/noah-isme/volunteer-hub-api/pkg/storage"
)

// App holds the wired dependencies shared by every subcommand.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *sqlx.DB
	redis  *redis.Client

	metrics   *service.MetricsService
	notifier  *service.NotificationService
	auth      *service.AuthService
	reports   *service.ReportService
	reminders *service.ReminderService
	routes    handler.Routes
}

// newApp connects the stores and builds the service graph.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, stats cache disabled", zap.Error(err))
		redisClient = nil
	}

	users := repository.NewUserRepository(db)
	profiles := repository.NewProfileRepository(db)
	events := repository.NewEventRepository(db)
	assignments := repository.NewAssignmentRepository(db)
	trainings := repository.NewTrainingRepository(db)
	messages := repository.NewMessageRepository(db)
	attestations := repository.NewAttestationRepository(db)
	notifications := repository.NewNotificationRepository(db)
	exports := repository.NewExportRepository(db)
	stats := repository.NewStatsRepository(db)

	metrics := service.NewMetricsService()
	statsCache := service.NewCacheService(
		repository.NewCacheRepository(redisClient, logger),
		metrics,
		cfg.Dashboard.CacheTTL,
		logger,
		cfg.Dashboard.CacheEnabled && redisClient != nil,
	)

	mail, err := mailer.New(ctx, cfg.Notifications, logger)
	if err != nil {
		return nil, fmt.Errorf("init mailer: %w", err)
	}
	notifier := service.NewNotificationService(notifications, users, mail, metrics, logger, service.NotificationConfig{
		Workers:       cfg.Notifications.Workers,
		BufferSize:    cfg.Notifications.BufferSize,
		MaxRetries:    cfg.Notifications.MaxRetries,
		RetryDelay:    cfg.Notifications.RetryDelay,
		SweepInterval: cfg.Notifications.SweepInterval,
		AdminEmails:   cfg.Admin.NotificationEmails,
	})

	objects, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("init object store: %w", err)
	}
	media := service.NewMediaService(objects, logger, service.MediaConfig{
		AvatarMaxBytes: cfg.Storage.AvatarMaxBytes,
		PosterMaxBytes: cfg.Storage.PosterMaxBytes,
		AllowedMIMEs:   cfg.Storage.AllowedImageMIMEs,
	})

	reportFiles, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("init report storage: %w", err)
	}
	exporter := service.NewExportService(
		reportFiles,
		storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL),
		service.ExportConfig{
			DownloadPath: cfg.Storage.PublicBaseURL + "/exports/download",
			ResultTTL:    cfg.Reports.SignedURLTTL,
		},
		logger, nil, nil, nil,
	)

	authSvc := service.NewAuthService(users, profiles, nil, logger, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
		AdminSecret:        cfg.Admin.RegistrationSecret,
	})
	profileSvc := service.NewProfileService(profiles, notifier, statsCache, media, users, nil, logger, cfg.AppURL)
	approvalSvc := service.NewApprovalService(profiles, notifier, statsCache, users, logger)
	eventSvc := service.NewEventService(events, media, statsCache, nil, logger)
	registrationSvc := service.NewRegistrationService(assignments, events, profiles, notifier, statsCache, users, nil, logger,
		service.RegistrationConfig{EnforceCapacity: cfg.Registration.EnforceCapacity})
	trainingSvc := service.NewTrainingService(trainings, media, notifier, statsCache, users, nil, logger)
	messageSvc := service.NewMessageService(messages, profiles, statsCache, nil, logger)
	attestationSvc := service.NewAttestationService(attestations, profiles, notifier, statsCache, users, nil, logger)
	reportSvc := service.NewReportService(stats, statsCache, profiles, assignments, events, exports, exporter, logger,
		service.ReportServiceConfig{StatsTTL: cfg.Dashboard.CacheTTL, CleanupInterval: 15 * time.Minute})

	reminderSvc, err := service.NewReminderService(events, assignments, notifier, logger, service.ReminderConfig{
		Spec:     cfg.Reminders.Schedule,
		Timezone: cfg.Reminders.Timezone,
	})
	if err != nil {
		return nil, fmt.Errorf("init reminders: %w", err)
	}

	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}
	var uploads handler.UploadOpener
	if local, ok := objects.(*storage.LocalObjectStore); ok {
		uploads = local
	}

	return &App{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		redis:     redisClient,
		metrics:   metrics,
		notifier:  notifier,
		auth:      authSvc,
		reports:   reportSvc,
		reminders: reminderSvc,
		routes: handler.Routes{
			Auth:         handler.NewAuthHandler(authSvc),
			Profiles:     handler.NewProfileHandler(profileSvc, approvalSvc),
			Events:       handler.NewEventHandler(eventSvc),
			Registration: handler.NewRegistrationHandler(registrationSvc),
			Trainings:    handler.NewTrainingHandler(trainingSvc),
			Messages:     handler.NewMessageHandler(messageSvc),
			Attestations: handler.NewAttestationHandler(attestationSvc),
			Reports:      handler.NewReportHandler(reportSvc),
			System:       handler.NewSystemHandler(metrics, checks, uploads),
			Tokens:       authSvc,
			ProfileRepo:  profiles,
			AuditRepo:    users,
			Logger:       logger,
		},
	}, nil
}

// Close releases the connections.
func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
