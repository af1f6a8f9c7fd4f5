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

	"interlinear/internal/api"
	"interlinear/internal/config"
	"interlinear/internal/handler"
	"interlinear/internal/repository/postgres"
	"interlinear/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	tele "gopkg.in/telebot.v3"
)

const (
	cleanupInterval = 24 * time.Hour
	shutdownTimeout = 10 * time.Second
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the Telegram bot and the maintenance job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting Interlinear", zap.String("version", version))

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Stop on interrupt signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := connectDatabase(ctx, cfg.DSN(), logger)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info("Database connection established")

	if err := runMigrations(db, logger); err != nil {
		return err
	}

	// Initialize repositories
	cardRepo := postgres.NewFlashcardRepo(db)
	linkRepo := postgres.NewLinkRepo(db)

	// Initialize services
	cardService := service.NewFlashcardService(cardRepo, logger, service.WithLocation(loc))
	linkService := service.NewLinkService(linkRepo, cfg.Telegram.LinkCodeTTL, logger)
	maintenanceService := service.NewMaintenanceService(linkRepo, logger)

	apiServer, err := api.NewServer(cardService, linkService, db, logger, api.Options{
		IdentityHeader: cfg.Server.IdentityHeader,
		AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
		Version:        version,
	})
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           h2c.NewHandler(apiServer.Handler(), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var bot *tele.Bot
	if cfg.BotEnabled() {
		bot, err = tele.NewBot(tele.Settings{
			Token:  cfg.BotToken,
			Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		})
		if err != nil {
			return fmt.Errorf("failed to create bot: %w", err)
		}

		h := handler.NewHandler(bot, cardService, linkService, logger)
		h.RegisterHandlers()

		go func() {
			logger.Info("Bot started successfully")
			bot.Start()
		}()
	} else {
		logger.Info("BOT_TOKEN not set, Telegram bot disabled")
	}

	// Start cleanup job in background
	go runCleanupJob(ctx, maintenanceService, logger)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping...")
	case err := <-serverErr:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
		}
	}

	// Graceful shutdown
	if bot != nil {
		bot.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}

	logger.Info("Stopped gracefully")
	return nil
}

// cleaner runs periodic maintenance
type cleaner interface {
	CleanupExpiredCodes(ctx context.Context) error
}

// runCleanupJob runs periodic cleanup of expired link codes
func runCleanupJob(ctx context.Context, maintenance cleaner, logger *zap.Logger) {
	// Run cleanup once at startup
	if err := maintenance.CleanupExpiredCodes(ctx); err != nil {
		logger.Error("Failed to run initial cleanup", zap.Error(err))
	}

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cleanup job stopped")
			return
		case <-ticker.C:
			logger.Info("Running scheduled cleanup")
			if err := maintenance.CleanupExpiredCodes(ctx); err != nil {
				logger.Error("Failed to run scheduled cleanup", zap.Error(err))
			}
		}
	}
}
