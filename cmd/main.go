package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VELOCITY6097/valorant-tourney/bracketapi"
	"github.com/VELOCITY6097/valorant-tourney/brackets"
	"github.com/VELOCITY6097/valorant-tourney/config"
	"github.com/VELOCITY6097/valorant-tourney/db"
	"github.com/VELOCITY6097/valorant-tourney/handlers"
	"github.com/VELOCITY6097/valorant-tourney/platform"
	"github.com/VELOCITY6097/valorant-tourney/repositories"
	api "github.com/VELOCITY6097/valorant-tourney/routes"
	"github.com/VELOCITY6097/valorant-tourney/services"
	"github.com/VELOCITY6097/valorant-tourney/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 not configured, media mirroring disabled")
	}

	bracketClient, err := bracketapi.NewHTTPClient(bracketapi.HTTPClientConfig{
		BaseURL:  cfg.BracketBaseURL,
		Username: cfg.BracketUsername,
		APIKey:   cfg.BracketAPIKey,
	})
	if err != nil {
		logger.Error("failed to initialize bracket service client", slog.Any("error", err))
		os.Exit(1)
	}

	gateway, err := platform.NewHTTPGateway(platform.HTTPGatewayConfig{
		BaseURL: cfg.PlatformGatewayURL,
		Token:   cfg.PlatformGatewayToken,
	})
	if err != nil {
		logger.Error("failed to initialize platform gateway", slog.Any("error", err))
		os.Exit(1)
	}

	wsHub := brackets.NewHub(logger)
	go wsHub.Run()
	logger.Info("websocket hub started")

	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	settingsRepo := repositories.NewPostgresGuildSettingsRepository(dbConn)
	logger.Info("repositories initialized")

	seeder := brackets.NewSingleEliminationGenerator()

	bracketService := services.NewBracketService(
		tournamentRepo, teamRepo, matchRepo, bracketClient, gateway, uploader, wsHub, logger)
	tournamentService := services.NewTournamentService(
		dbConn, tournamentRepo, teamRepo, matchRepo, settingsRepo, gateway, seeder, bracketService, logger)
	teamService := services.NewTeamService(
		tournamentRepo, teamRepo, registrationRepo, settingsRepo, gateway, uploader, logger)
	registrationService := services.NewRegistrationService(
		tournamentRepo, teamRepo, registrationRepo, gateway, logger)
	settingsService := services.NewSettingsService(settingsRepo, logger)
	scheduler := services.NewScheduler(
		tournamentRepo, teamRepo, matchRepo, registrationRepo, gateway, cfg.PreMatchWindow, logger)
	logger.Info("services initialized")

	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	go scheduler.Run(schedulerCtx, cfg.SchedulerInterval)

	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	bracketHandler := handlers.NewBracketHandler(bracketService)
	teamHandler := handlers.NewTeamHandler(teamService)
	registrationHandler := handlers.NewRegistrationHandler(registrationService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, tournamentService, logger)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		[]byte(cfg.JWTSecretKey),
		tournamentHandler,
		bracketHandler,
		teamHandler,
		registrationHandler,
		settingsHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		stopScheduler()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
