package main

import (
	"context"

	"github.com/Mykyta-Harashchenko/contacthub/internal/config"
	"github.com/Mykyta-Harashchenko/contacthub/internal/handlers"
	"github.com/Mykyta-Harashchenko/contacthub/internal/models"
	"github.com/Mykyta-Harashchenko/contacthub/internal/security"
	"github.com/Mykyta-Harashchenko/contacthub/internal/services"
	"github.com/Mykyta-Harashchenko/contacthub/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg           *config.Config
	authService   *services.AuthService
	userCache     *services.UserCache
	taskQueue     services.TaskQueue
	worker        *services.Worker
	digestService *services.DigestService

	authHandler    *handlers.AuthHandler
	userHandler    *handlers.UserHandler
	contactHandler *handlers.ContactHandler
	healthHandler  *handlers.HealthHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	codec, err := security.NewTokenCodec(&cfg.JWT)
	if err != nil {
		logger.Fatalf("Failed to configure token signing: %v", err)
	}

	// Optional Redis-backed user cache
	userCache := services.NewUserCache(&cfg.Redis)

	db := models.GetDB()
	emailService := services.NewEmailService(&cfg.Mail, codec)
	authService := services.NewAuthService(db, codec, userCache)
	contactService := services.NewContactService(db)

	// Task queue (uses Redis if enabled, otherwise sync mode)
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(emailService.ProcessEmailTask)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(emailService.ProcessEmailTask)
			worker.Start()
		}
	}

	// Optional S3 avatar storage
	avatarStore, err := services.NewAvatarStore(context.Background(), &cfg.Storage)
	if err != nil {
		logger.Warn().Err(err).Msg("Avatar storage unavailable")
		avatarStore = nil
	}

	// Daily birthday digest
	var digestService *services.DigestService
	if cfg.Digest.Enabled {
		digestService = services.NewDigestService(db, emailService, contactService, &cfg.Digest)
		digestService.StartScheduler()
	}

	return &appServices{
		cfg:            cfg,
		authService:    authService,
		userCache:      userCache,
		taskQueue:      taskQueue,
		worker:         worker,
		digestService:  digestService,
		authHandler:    handlers.NewAuthHandler(authService, taskQueue),
		userHandler:    handlers.NewUserHandler(db, avatarStore, userCache),
		contactHandler: handlers.NewContactHandler(contactService),
		healthHandler:  handlers.NewHealthHandler(),
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	if s.digestService != nil {
		s.digestService.StopScheduler()
	}
	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
	s.userCache.Close()
	logger.Info().Msg("All services stopped")
}
