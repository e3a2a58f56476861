package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/config"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/database"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/handler"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/middleware"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/models"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/repository"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/router"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.Connect(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Submission{},
		&models.Group{},
		&models.GroupMessage{},
		&models.Announcement{},
		&models.Template{},
		&models.Notification{},
		&models.Upload{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	uploadRepo := repository.NewUploadRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, logger)
	userService := service.NewUserService(userRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, userRepo, groupRepo, templateRepo, notificationService, validate, logger)
	analyticsService := service.NewAnalyticsService(submissionRepo, redisClient, cfg.AnalyticsCacheTTL, logger)
	announcementService := service.NewAnnouncementService(announcementRepo, userRepo, notificationService, validate, logger)
	groupService := service.NewGroupService(groupRepo, notificationService, validate, logger)
	templateService := service.NewTemplateService(templateRepo, validate, logger)
	uploadService := service.NewUploadService(uploadRepo, validate, cfg.UploadDir, cfg.UploadMaxMB, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		SubmissionHandler:   handler.NewSubmissionHandler(submissionService, logger),
		AnalyticsHandler:    handler.NewAnalyticsHandler(analyticsService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger),
		AnnouncementHandler: handler.NewAnnouncementHandler(announcementService, logger),
		GroupHandler:        handler.NewGroupHandler(groupService, logger),
		TemplateHandler:     handler.NewTemplateHandler(templateService, logger),
		UserHandler:         handler.NewUserHandler(userService, logger),
		UploadHandler:       handler.NewUploadHandler(uploadService, logger),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
