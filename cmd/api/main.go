package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"gigbook/config"
	"gigbook/internal/adapters/auth"
	"gigbook/internal/adapters/database"
	"gigbook/internal/adapters/email"
	delivery "gigbook/internal/delivery/http"
	"gigbook/internal/delivery/http/controllers"
	"gigbook/internal/delivery/http/middleware"
	"gigbook/internal/repository/postgres"
	"gigbook/internal/services"
)

const serviceTimeout = 5 * time.Second

// @title GigBook API
// @version 1.0
// @description Event scheduling and participation engine for artists, bands, venues, representatives, and producers.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(logger, cfg.DBUrl, cfg.MigrationsPath); err != nil {
		logger.Error("failed to run migrations", "err", err)
		os.Exit(1)
	}

	eventRepo := postgres.NewEventRepository(db)
	participationRepo := postgres.NewParticipationRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)
	holdRepo := postgres.NewCalendarHoldRepository(db)
	rosterRepo := postgres.NewBandRosterRepository(db)
	profileRepo := postgres.NewProfileRepository(db)

	mailer, err := email.NewMailer(cfg.Mailer)
	if err != nil {
		logger.Error("failed to init mailer", "err", err)
		os.Exit(1)
	}
	emailSvc := services.NewEmailService(mailer, email.NewTemplateRenderer())

	scheduleSvc := services.NewScheduleService(
		eventRepo,
		participationRepo,
		invitationRepo,
		holdRepo,
		rosterRepo,
		profileRepo,
		emailSvc,
		logger,
		serviceTimeout,
	)
	participationSvc := services.NewParticipationService(
		eventRepo,
		participationRepo,
		invitationRepo,
		holdRepo,
		serviceTimeout,
	)

	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	requireAuth := middleware.RequireAuth(verifier, logger)

	eventController := controllers.NewEventController(logger, scheduleSvc)
	participationController := controllers.NewParticipationController(logger, participationSvc)

	mux := delivery.NewRouter(eventController, participationController, requireAuth)
	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
