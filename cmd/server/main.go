package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "equipshare-backend/internal/api/http"
	"equipshare-backend/internal/config"
	"equipshare-backend/internal/logger"
	"equipshare-backend/internal/metrics"
	"equipshare-backend/internal/repository/postgres"
	"equipshare-backend/internal/security"
	"equipshare-backend/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting EquipShare Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)

	// Initialize Metrics
	metrics.Register()

	// Initialize Services
	emailSvc := service.NewEmailService(cfg.Email.APIKey, cfg.Email.From, cfg.Email.FromName)
	dispatcher := service.NewNotificationDispatcher(
		store.NotificationRepository,
		store.UserRepository,
		store.SettingsRepository,
		time.Now,
	)
	settingsSvc := service.NewSettingsService(
		store.SettingsRepository,
		store.CategoryLimitRepository,
		store.ClosedDateRepository,
		store.AuditLogRepository,
		store.BackupRepository,
		dispatcher,
		time.Now,
	)
	calendarSvc := service.NewCalendarService(
		store.ClosedDateRepository,
		store.AuditLogRepository,
		dispatcher,
		time.Now,
	)
	limitSvc := service.NewCategoryLimitService(
		store.CategoryLimitRepository,
		store.LoanRepository,
		store.SettingsRepository,
	)
	loanSvc := service.NewLoanService(
		store.LoanRepository,
		store.EquipmentRepository,
		store.UserRepository,
		store.DamageReportRepository,
		store.ActivityLogRepository,
		limitSvc,
		calendarSvc,
		settingsSvc,
		dispatcher,
		emailSvc,
		time.Now,
	)
	noteSvc := service.NewNotificationService(store.NotificationRepository, time.Now)

	// Initialize HTTP API
	handlers := httpapi.Handlers{
		Loans:         httpapi.NewLoanHandlers(loanSvc, limitSvc),
		Settings:      httpapi.NewSettingsHandlers(settingsSvc, calendarSvc),
		Notifications: httpapi.NewNotificationHandlers(noteSvc),
	}
	limiter := httpapi.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	router := httpapi.NewRouter(handlers, tokenManager, limiter)

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
