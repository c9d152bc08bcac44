package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/config"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/database"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/dto"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/lifecycle"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/logging"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/notify"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/repository"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/repository/memory"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/routes"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	stdout := logging.Setup(cfg.AppEnv)

	var (
		feedbackRepo repository.FeedbackRepository
		reportRepo   repository.ReportRepository
		ping         func() error
		pgLogHandler *logging.PGHandler
		cleanupDone  = make(chan struct{})
	)

	if cfg.UsesMemoryStore() {
		slog.Warn("using in-memory store; data is lost on restart")
		feedbackRepo = memory.NewFeedbackStore()
		reportRepo = memory.NewReportStore()
	} else {
		if cfg.DBPassword == "" {
			slog.Error("DB_PASSWORD environment variable is required")
			os.Exit(1)
		}
		if err := database.Connect(cfg); err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		if err := database.Migrate(); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}

		// PostgreSQL log handler (ERROR+ async batch)
		pgLogHandler = logging.NewPGHandler(database.DB)
		slog.SetDefault(slog.New(logging.NewMultiHandler(stdout, pgLogHandler)))

		logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

		feedbackRepo = repository.NewFeedbackStore(database.DB)
		reportRepo = repository.NewReportStore(database.DB)
		ping = database.Ping
	}

	// Notifications
	var (
		sink          notify.Sink = notify.Discard
		dispatcher    *notify.Dispatcher
		notifications = "disabled"
	)
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		transport, err := notify.NewRedisTransport(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			slog.Error("redis unavailable, notifications disabled", "error", err)
		} else {
			dispatcher = notify.NewDispatcher(transport, cfg.NotificationTopic, cfg.NotificationQueueSize, cfg.NotificationTimeout)
			sink = dispatcher
			notifications = "redis:" + cfg.NotificationTopic
		}
	}

	// Services
	feedbackPolicy, reportPolicy := lifecycle.Policies(cfg.StrictTransitions)
	feedbackService := services.NewFeedbackService(feedbackRepo, lifecycle.NewFeedbackMachine(feedbackPolicy, nil), sink)
	reportService := services.NewReportService(reportRepo, lifecycle.NewReportMachine(reportPolicy, nil), sink, cfg.ReportOverdueAfter)
	statisticsService := services.NewStatisticsService(feedbackRepo, reportRepo)

	// Handlers
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService, statisticsService)
	reportHandler := handlers.NewReportHandler(reportService, statisticsService)
	healthHandler := handlers.NewHealthHandler(cfg.StoreDriver, ping, notifications)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	// Routes
	routes.Setup(app, cfg, feedbackHandler, reportHandler, healthHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting",
			"port", cfg.Port,
			"store", cfg.StoreDriver,
			"strict_transitions", cfg.StrictTransitions,
			"notifications", notifications,
		)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// Drain queued notifications after the last request has finished.
	if dispatcher != nil {
		if err := dispatcher.Close(); err != nil {
			slog.Error("notification shutdown error", "error", err)
		}
	}

	close(cleanupDone)
	if pgLogHandler != nil {
		pgLogHandler.Stop()
	}
	sentry.Flush(2 * time.Second)

	// Close database connections
	if database.DB != nil {
		if sqlDB, err := database.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				slog.Error("database close error", "error", err)
			}
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else if apperr.CodeOf(err) != apperr.CodeInternal {
		code = apperr.HTTPStatus(err)
		message = err.Error()
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{
		Error:   true,
		Message: message,
	})
}
