// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/blockbuilder-go/internal/application/container"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/caching/cleanup"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/database"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/blockbuilder-go/internal/presentation/http/routes"
	"github.com/AtRiskMedia/blockbuilder-go/internal/presentation/http/server"
	"github.com/AtRiskMedia/blockbuilder-go/pkg/config"
)

// Initialize performs the complete startup sequence and blocks until SIGINT
// or SIGTERM
func Initialize(port string) error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	log.Println("\033[32m" + `
 ▄▄▄  ▄    ▄▄▄  ▄▄▄ ▄  ▄   ▄▄▄  ▄  ▄ ▄ ▄   ▄▄▄  ▄▄▄ ▄▄▄
 █▄▄▀ █    █ █ █    █▄▀    █▄▄▀ █  █ █ █   █  █ █▄▄ █▄▄▀
 █▄▄▀ █▄▄▄ █▄█ ▀▄▄▄ █ ▀▄   █▄▄▀ ▀▄▄▀ █ █▄▄ █▄▄▀ █▄▄ █  █
` + "\033[97m" + `
  email and page builder
` + "\033[0m")

	// Step 1: Logging
	logger, err := NewLogger(nil)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()
	logger.Startup().Info("Channeled logging initialized", "levels", logger.GetChannelLevels())

	// Step 2: Database
	dbStart := time.Now()
	db, err := OpenDatabase(logger)
	if err != nil {
		logger.LogStartupPhase("database", time.Since(dbStart), false, map[string]any{"error": err.Error()})
		return err
	}
	defer db.Close()
	logger.LogStartupPhase("database", time.Since(dbStart), true, map[string]any{"connection": db.GetConnectionInfo()})

	// Step 3: Dependency injection container
	containerStart := time.Now()
	appContainer, err := container.NewContainer(db, logger)
	if err != nil {
		return fmt.Errorf("failed to create container: %w", err)
	}
	logger.LogStartupPhase("container", time.Since(containerStart), true, map[string]any{
		"widgets":  len(appContainer.Registry.List()),
		"starters": len(appContainer.StarterService.List()),
		"auth":     appContainer.AuthService.Enabled(),
	})
	if !appContainer.AuthService.Enabled() {
		logger.Startup().Warn("JWT_SECRET or password hashes not set, the API is open")
	}

	// Step 4: Preview broadcaster
	go appContainer.Broadcaster.Run(ctx)
	logger.Startup().Info("Preview broadcaster started")

	// Step 5: Background cleanup worker
	cleanupConfig := cleanup.NewConfig()
	reporter := cleanup.NewReporter(os.Stdout)
	cleanupWorker := cleanup.NewWorker(cleanupConfig, logger, reporter,
		cleanup.Target{Store: appContainer.EditorService, TTL: cleanupConfig.SessionTTL},
		cleanup.Target{Store: appContainer.RenderCache, TTL: cleanupConfig.RenderCacheTTL},
	)
	go cleanupWorker.Start(ctx)
	if cleanupConfig.VerboseReporting {
		reporter.LogHeader("Background cleanup")
		reporter.LogStepSuccess("Sessions expire after %s idle", cleanupConfig.SessionTTL)
		reporter.LogStepSuccess("Renders expire after %s", cleanupConfig.RenderCacheTTL)
	}

	// Step 6: HTTP server, until SIGINT or SIGTERM
	serverConfig := server.ConfigFromEnv(port)
	httpServer := server.New(serverConfig, routes.SetupRoutes(appContainer), logger)

	signalCtx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"address", serverConfig.Addr)

	serveErr := httpServer.Run(signalCtx)
	shutdownStart := time.Now()
	cancelBackgroundTasks()
	if serveErr != nil {
		logger.System().Error("HTTP server failed", "error", serveErr.Error())
		return serveErr
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// NewLogger builds the channeled logger from the LOG_* settings. A non-nil
// writer replaces console output.
func NewLogger(writer io.Writer) (*logging.ChanneledLogger, error) {
	cfg := logging.DefaultLoggerConfig()
	cfg.OutputToFile = config.LogToFile
	cfg.LogDirectory = config.LogDirectory
	cfg.JSONFormat = config.LogJSON
	cfg.DefaultLevel = logging.ParseLevel(config.LogLevel)
	cfg.Writer = writer
	for _, pair := range strings.Split(config.LogChannelLevels, ",") {
		channel, level, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		cfg.ChannelLevels[logging.Channel(strings.TrimSpace(channel))] = logging.ParseLevel(level)
	}
	return logging.NewChanneledLogger(cfg)
}

// OpenDatabase connects to DATABASE_URL and makes sure the schema exists
func OpenDatabase(logger *logging.ChanneledLogger) (*database.Database, error) {
	db, err := database.Open(database.Config{
		URL:             config.DatabaseURL,
		AuthToken:       config.DatabaseAuthToken,
		MaxOpenConns:    config.DBMaxOpenConns,
		MaxIdleConns:    config.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(config.DBConnMaxLifetimeMinutes) * time.Minute,
		ConnMaxIdleTime: time.Duration(config.DBConnMaxIdleMinutes) * time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := database.NewTableCreator().CreateSchema(db.Conn); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	logger.Database().Info("Database ready", "connection", db.GetConnectionInfo())
	return db, nil
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
