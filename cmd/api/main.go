package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atlasfield/fieldtrack-api/docs"
	"github.com/atlasfield/fieldtrack-api/internal/auth"
	"github.com/atlasfield/fieldtrack-api/internal/config"
	"github.com/atlasfield/fieldtrack-api/internal/database"
	"github.com/atlasfield/fieldtrack-api/internal/http/handler"
	"github.com/atlasfield/fieldtrack-api/internal/http/middleware"
	"github.com/atlasfield/fieldtrack-api/internal/http/router"
	"github.com/atlasfield/fieldtrack-api/internal/jobs"
	"github.com/atlasfield/fieldtrack-api/internal/logger"
	"github.com/atlasfield/fieldtrack-api/internal/repository"
	"github.com/atlasfield/fieldtrack-api/internal/service"
	"github.com/atlasfield/fieldtrack-api/internal/storage"
	"go.uber.org/zap"
)

// @title FieldTrack API
// @version 1.0
// @description Field services time tracking API with service ticket consolidation and numbering

// @contact.name API Support
// @contact.email support@atlasfield.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token
// @Security BearerAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "fieldtrack-staging.atlasfield.io"
	case "production":
		docs.SwaggerInfo.Host = "api.atlasfield.io"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database with retry logic
	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize storage for exported ticket documents
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize repositories
	ticketRepo := repository.NewTicketRepository(db)
	expenseRepo := repository.NewTicketExpenseRepository(db)
	entryRepo := repository.NewTimeEntryRepository(db)
	exportRepo := repository.NewExportFileRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize services
	numberService := service.NewTicketNumberService(ticketRepo, &cfg.Tickets, log)
	ticketService := service.NewTicketService(ticketRepo, expenseRepo, entryRepo, userRepo, numberService, &cfg.Tickets, log)
	expenseService := service.NewTicketExpenseService(expenseRepo, ticketRepo, log)
	entryService := service.NewTimeEntryService(entryRepo, projectRepo, ticketService, log)
	exportService := service.NewExportService(exportRepo, ticketService, fileStorage, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	ticketHandler := handler.NewTicketHandler(ticketService, log)
	timeEntryHandler := handler.NewTimeEntryHandler(entryService, log)
	expenseHandler := handler.NewExpenseHandler(expenseService, log)
	exportHandler := handler.NewExportHandler(exportService, cfg.Storage.MaxUploadSizeMB, log)
	userHandler := handler.NewUserHandler(userRepo, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		ticketHandler,
		timeEntryHandler,
		expenseHandler,
		exportHandler,
		userHandler,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.DraftCleanupEnabled {
		scheduler = jobs.NewScheduler(log)

		if err := jobs.RegisterDraftCleanupJob(
			scheduler,
			ticketService,
			log,
			cfg.Jobs.DraftCleanupSchedule,
		); err != nil {
			log.Error("Failed to register draft cleanup job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with draft cleanup job",
				zap.String("cron_expr", cfg.Jobs.DraftCleanupSchedule),
			)
		}
	} else {
		log.Info("Draft cleanup job disabled")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
