package setup

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/rueidis"
	"github.com/robalyx/fuzzy/internal/database"
	"github.com/robalyx/fuzzy/internal/database/migrations"
	"github.com/robalyx/fuzzy/internal/redis"
	"github.com/robalyx/fuzzy/internal/setup/config"
	"github.com/robalyx/fuzzy/internal/setup/telemetry"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
)

// App bundles all core dependencies and services needed by the application.
// Each field represents a major subsystem that needs initialization and cleanup.
type App struct {
	Config       *config.Config     // Application configuration
	Logger       *zap.Logger        // Main application logger
	DBLogger     *zap.Logger        // Database-specific logger
	DB           database.Client    // Database connection pool
	RedisManager *redis.Manager     // Redis connection manager
	StatusClient rueidis.Client     // Redis client for scheduler heartbeats
	LogManager   *telemetry.Manager // Log management system
	shutdowns    []telemetry.ShutdownFunc
}

// InitializeApp bootstraps all application dependencies in the correct order,
// ensuring each component has its required dependencies available.
func InitializeApp(ctx context.Context, serviceType telemetry.ServiceType, logDir string) (*App, error) {
	// Load app configuration
	cfg, _, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	// Remote error reporting comes first so the loggers can attach to it
	version := config.RepositoryVersion
	telemetryCfg := &cfg.Common.Telemetry

	flushSentry, _, err := telemetry.ConfigureSentry(telemetryCfg, version)
	if err != nil {
		return nil, err
	}
	shutdownTracing, tracing := telemetry.ConfigureTracing(telemetryCfg, version)

	// Logging system is initialized next to capture setup issues
	logManager := telemetry.NewManager(serviceType, logDir, &cfg.Common.Debug, tracing)

	logger, dbLogger, err := logManager.GetLoggers()
	if err != nil {
		return nil, err
	}

	logger.Info("Telemetry configured",
		zap.String("service", serviceType.String()),
		zap.Bool("tracing", tracing),
		zap.Bool("sentry", telemetryCfg.SentryDSN != ""))

	// Redis manager provides connection pools for various subsystems
	redisManager := redis.NewManager(&cfg.Common.Redis, logger)

	// Initialize database with migration check
	db, err := checkAndRunMigrations(ctx, &cfg.Common.PostgreSQL, dbLogger)
	if err != nil {
		redisManager.Close()
		return nil, err
	}

	// Get Redis client for scheduler heartbeats
	statusClient, err := redisManager.GetClient(redis.WorkerStatusDBIndex)
	if err != nil {
		_ = db.Close()
		redisManager.Close()
		return nil, err
	}

	// Bundle all initialized components
	return &App{
		Config:       cfg,
		Logger:       logger,
		DBLogger:     dbLogger.Named("database"),
		DB:           db,
		RedisManager: redisManager,
		StatusClient: statusClient,
		LogManager:   logManager,
		shutdowns:    []telemetry.ShutdownFunc{shutdownTracing, flushSentry},
	}, nil
}

// Cleanup ensures graceful shutdown of all components in reverse initialization order.
// Logs but does not fail on cleanup errors to ensure all components get cleanup attempts.
func (s *App) Cleanup(ctx context.Context) {
	// Flush remote telemetry while the loggers still work
	for _, shutdown := range s.shutdowns {
		if err := shutdown(ctx); err != nil {
			s.Logger.Error("Failed to shut down telemetry exporter", zap.Error(err))
		}
	}

	// Sync buffered logs before shutdown
	if err := s.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	if err := s.DBLogger.Sync(); err != nil {
		log.Printf("Failed to sync DB logger: %v", err)
	}

	// Close database connections
	if err := s.DB.Close(); err != nil {
		log.Printf("Failed to close database connection: %v", err)
	}

	// Close Redis connections last as other components might need it during cleanup
	s.RedisManager.Close()
}

// checkAndRunMigrations runs database migrations if needed.
func checkAndRunMigrations(ctx context.Context, cfg *config.PostgreSQL, dbLogger *zap.Logger) (database.Client, error) {
	tempDB, err := database.NewConnection(ctx, cfg, dbLogger, false)
	if err != nil {
		return nil, err
	}

	migrator := migrate.NewMigrator(tempDB.DB(), migrations.Migrations)

	ms, err := migrator.MigrationsWithStatus(ctx)
	if err != nil {
		tempDB.Close()
		return nil, fmt.Errorf("failed to check migration status: %w", err)
	}

	unapplied := ms.Unapplied()
	if len(unapplied) == 0 {
		return tempDB, nil
	}

	log.Printf("%d database migrations are pending. Would you like to run them now? (y/N)", len(unapplied))

	var response string

	_, _ = fmt.Scanln(&response)

	if response != "y" && response != "Y" {
		tempDB.Close()
		log.Fatalf("Closing program due to incomplete migrations")
	}

	tempDB.Close()

	return database.NewConnection(ctx, cfg, dbLogger, true)
}
