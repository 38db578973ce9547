package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payvance/app/echo-server/router"
	"payvance/business/analytics"
	"payvance/business/event"
	"payvance/business/experiment"
	"payvance/business/notification"
	"payvance/business/onboarding"
	"payvance/business/referral"
	"payvance/business/scheduler"
	userService "payvance/business/user"
	"payvance/domain"
	"payvance/internal/middleware"
	"payvance/internal/repository/mailer"
	psqlRepo "payvance/internal/repository/postgres"
	redisRepo "payvance/internal/repository/redis"
	"payvance/internal/rest"
	"payvance/pkg/config"
	"payvance/pkg/database"
	redisdb "payvance/pkg/database/redis"
	"payvance/pkg/logger"
	"payvance/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting Payvance Onboarding API", "version", cfg.App.Version)

	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", "error", err)
	}
	logger.Info("Redis connected successfully")

	// Init transports
	mailjetEmail := mailer.NewMailjetRepository(mailer.MailjetConfig{
		MailjetBaseURL:           cfg.Mailjet.MailjetBaseUrl,
		MailjetBasicAuthUsername: cfg.Mailjet.MailjetBasicAuthUsername,
		MailjetBasicAuthPassword: cfg.Mailjet.MailjetBasicAuthPassword,
		MailjetSenderEmail:       cfg.Mailjet.MailjetSenderEmail,
		MailjetSenderName:        cfg.Mailjet.MailjetSenderName,
	})
	smsSender := mailer.NewSMSRepository()
	whatsappSender := mailer.NewWhatsAppRepository()

	// Init validate
	validate := validator.New()

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	referralRepo := psqlRepo.NewReferralRepository(db)
	eventRepo := psqlRepo.NewEventRepository(db)
	notificationRepo := psqlRepo.NewNotificationRepository(db)
	experimentRepo := psqlRepo.NewExperimentRepository(db)
	scheduleQueue := redisRepo.NewScheduleRepository(redisClient)

	// Init service
	eventService := event.NewEventService(eventRepo)
	usersService := userService.NewUserService(userRepo, referralRepo, eventService, validate, cfg.JWT.SecretKey)
	notificationService := notification.NewNotificationService(
		notificationRepo,
		userRepo,
		scheduleQueue,
		mailjetEmail,
		smsSender,
		whatsappSender,
		eventService,
		cfg.Scheduler.InactivityDays,
		cfg.Scheduler.MaxDispatchRetries,
	)
	onboardingService := onboarding.NewOnboardingService(
		userRepo,
		referralRepo,
		eventService,
		notificationService,
		cfg.Referral.RewardAmount,
		cfg.Referral.RewardCurrency,
	)
	referralService := referral.NewReferralService(referralRepo, userRepo, eventService)
	experimentService := experiment.NewExperimentService(experimentRepo, eventRepo, eventService)
	analyticsService := analytics.NewAnalyticsService(userRepo, referralRepo, eventRepo, notificationRepo)

	// Init handler
	userHandler := rest.NewUserHandler(usersService)
	onboardingHandler := rest.NewOnboardingHandler(onboardingService)
	referralHandler := rest.NewReferralHandler(referralService)
	eventHandler := rest.NewEventHandler(eventService)
	notificationHandler := rest.NewNotificationHandler(notificationService)
	experimentHandler := rest.NewExperimentHandler(experimentService)
	analyticsHandler := rest.NewAnalyticsHandler(analyticsService)

	// Init scheduler
	jobs := scheduler.NewJobs(
		userRepo,
		notificationService,
		eventService,
		cfg.Scheduler.InactivityDays,
		cfg.Scheduler.KycReminderAfterDays,
	)
	sched := scheduler.NewScheduler(jobs, cfg.Scheduler)
	sched.Start()

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"status":  "ok",
			"name":    cfg.App.Name,
			"version": cfg.App.Version,
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Auth middleware
	authRequired := middleware.Auth(cfg.JWT.SecretKey, userRepo)
	adminOnly := middleware.RequireRoles(domain.RoleAdmin)
	marketerOrAdmin := middleware.RequireRoles(domain.RoleAdmin, domain.RoleMarketer)

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupAuthRoutes(api, userHandler)
	router.SetupUserRoutes(api, userHandler, authRequired, adminOnly)
	router.SetupOnboardingRoutes(api, onboardingHandler, authRequired, adminOnly)
	router.SetupReferralRoutes(api, referralHandler, authRequired)
	router.SetupEventRoutes(api, eventHandler, authRequired)
	router.SetupNotificationRoutes(api, notificationHandler, authRequired, adminOnly)
	router.SetupExperimentRoutes(api, experimentHandler, authRequired, marketerOrAdmin)
	router.SetupAnalyticsRoutes(api, analyticsHandler, authRequired, adminOnly)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Stop accepting cron runs, wait for in-flight jobs
	select {
	case <-sched.Stop().Done():
	case <-ctx.Done():
		logger.Warn("Timed out waiting for scheduled jobs to finish")
	}

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if err := redisdb.CloseRedisClient(redisClient); err != nil {
		logger.Error("Redis shutdown error", "error", err)
	}
	if err := database.ClosePostgres(db); err != nil {
		logger.Error("Database shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
