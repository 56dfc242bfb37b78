// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pulsedeskhq/pulsedesk-go/internal/application/container"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/email"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/messaging"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/observability/logging"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/observability/performance"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/persistence/database"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/persistence/runs"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/security"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/sources"
	"github.com/pulsedeskhq/pulsedesk-go/internal/presentation/http/server"
	"github.com/pulsedeskhq/pulsedesk-go/pkg/config"
)

// Initialize performs the complete startup sequence
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	log.Println("\033[32m" + `

  ▄▄▄▄  ▄  ▄ ▄▄▄  ▄▄▄▄ ▄▄▄▄ ▄▄▄  ▄▄▄▄ ▄  ▄
  █   █ █  █ █    █    █    █  █ █    █ █
  █▀▀▀  █  █ █    ▀▀▀█ █▀▀  █  █ █▀▀  ██
  █     ▀▄▄▀ ▄▄▄█ ▄▄▄▀ ▄▄▄▄ ▄▄▄▀ ▄▄▄▄ █ ▀▄
` + "\033[97m" + `
  engagement analytics engine
` + "\033[0m")

	// Step 1: Channeled logging and performance tracking
	log.Println("Initializing observability...")
	logger, err := logging.NewChanneledLogger(logging.DefaultLoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	perfTracker := performance.NewTracker(performance.DefaultTrackerConfig())
	logger.Startup().Info("Observability initialized")

	// Sessions issued against an ephemeral secret do not survive a restart.
	if config.JWTSecret == "" {
		secret, err := security.GenerateSecureKey(64)
		if err != nil {
			return fmt.Errorf("failed to generate session secret: %w", err)
		}
		config.JWTSecret = secret
		logger.Startup().Warn("JWT_SECRET not set, generated an ephemeral session secret")
	}

	// Step 2: Run history database
	logger.Startup().Info("Opening run history database", "path", config.RunHistoryDBPath)
	if err := database.EnsureDataDirectory(config.RunHistoryDBPath); err != nil {
		return fmt.Errorf("failed to prepare data directory: %w", err)
	}
	if err := database.TestConnectionWithLogger(config.RunHistoryDBPath, logger); err != nil {
		return fmt.Errorf("run history database connection test failed: %w", err)
	}
	runDB, err := database.NewConnectionWithLogger("sqlite3", config.RunHistoryDBPath, logger)
	if err != nil {
		return fmt.Errorf("failed to open run history database: %w", err)
	}
	runRepository := runs.NewSQLRunRepository(runDB, logger)
	if err := runRepository.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate run history schema: %w", err)
	}

	// Step 3: Source clients
	logger.Startup().Info("Configuring source clients",
		"ticketApi", config.TicketAPIURL,
		"crmApi", config.CrmAPIURL,
		"usageFeed", config.UsageFeedPath)
	ticketClient := sources.NewTicketClient(config.TicketAPIURL, config.TicketAPIToken, config.TicketMaxResults, config.SourceFetchTimeout)
	crmClient := sources.NewCrmClient(config.CrmAPIURL, config.CrmAPIToken, config.SourceFetchTimeout)
	usageReader := sources.NewUsageFeedReader(config.UsageFeedPath, config.UsageFeedDelimiter)
	fetcher := sources.NewSnapshotFetcher(ticketClient, crmClient, usageReader, logger, config.SourceFetchTimeout)

	// Step 4: Run status broadcaster and marker cleanup
	logger.Startup().Info("Starting run status broadcaster...")
	broadcaster := messaging.NewRunBroadcaster(logger)
	go broadcaster.Run(ctx)

	go func() {
		ticker := time.NewTicker(15 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				perfTracker.Cleanup()
			}
		}
	}()

	// Step 5: Digest email service, optional when no API key is configured
	emailService, err := email.NewService()
	if err != nil {
		logger.Startup().Warn("Digest email disabled", "reason", err.Error())
		emailService = nil
	} else {
		logger.Startup().Info("Digest email service ready")
	}

	// Step 6: Dependency injection container
	logger.Startup().Info("Initializing dependency injection container...")
	appContainer := container.NewContainer(container.Dependencies{
		Fetcher:        fetcher,
		RunRepository:  runRepository,
		RunBroadcaster: broadcaster,
		RunDB:          runDB,
		EmailService:   emailService,
		Logger:         logger,
		PerfTracker:    perfTracker,
	})
	logger.Startup().Info("Dependency injection container created with singleton services")

	// Step 7: HTTP server
	startServerTime := time.Now()
	port := config.Port
	httpServer := server.New(port, appContainer)
	logger.Startup().Info("HTTP server initialized", "port", port, "duration", time.Since(startServerTime))

	// Step 8: Graceful shutdown wiring
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	totalStartupTime := time.Since(start)
	logger.Startup().Info("Application startup complete",
		"totalDuration", totalStartupTime,
		"port", port)

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()

	// Cancel background tasks
	cancelBackgroundTasks()

	// Stop server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Closing run history database...")
	if err := runDB.Close(); err != nil {
		logger.Shutdown().Error("Error closing run history database", "error", err.Error())
	} else {
		logger.Shutdown().Info("Run history database closed successfully")
	}

	elapsed := time.Since(start)
	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", elapsed,
		"shutdownDuration", time.Since(shutdownStart))

	if err := logger.Close(); err != nil {
		log.Printf("Error closing log files: %v", err)
	}

	return nil
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
