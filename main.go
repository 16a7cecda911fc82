package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/estate-listing/internal/api"
	"github.com/isdelr/estate-listing/internal/auth"
	"github.com/isdelr/estate-listing/internal/config"
	"github.com/isdelr/estate-listing/internal/database"
	"github.com/isdelr/estate-listing/internal/logger"
	"github.com/isdelr/estate-listing/internal/services"
	"github.com/isdelr/estate-listing/internal/web"
	"github.com/isdelr/estate-listing/internal/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Ensures the upload directory exists
	uploadService, err := services.NewUploadService(cfg.UploadDir, cfg.UploadUniqueNames)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("Failed to initialize uploads")
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse templates")
	}

	// Set up services
	hasher := auth.NewPasswordHasher(cfg.PasswordAlgorithm, cfg.PasswordIterations)
	sessions := auth.NewSessionManager(cfg.SecretKey, cfg.SessionTTL, cfg.CookieSecure)
	userService := services.NewUserService(db, hasher)
	propertyService := services.NewPropertyService(db)
	eventService := services.NewEventService(db)

	// Live listing feed
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := websocket.NewHub()
	go hub.Run(hubCtx)

	// Set up router
	router := api.NewRouter(cfg, db, renderer, sessions, userService, propertyService, uploadService, eventService, hub)

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	// Shutdown does not wait for hijacked feed connections.
	stopHub()

	log.Info().Msg("Server exiting")
}
