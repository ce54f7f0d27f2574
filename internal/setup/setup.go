package setup

import (
	"context"
	"fmt"
	"log"

	"github.com/civicwatch/civicwatch/internal/database"
	"github.com/civicwatch/civicwatch/internal/database/migrations"
	"github.com/civicwatch/civicwatch/internal/redis"
	"github.com/civicwatch/civicwatch/internal/setup/config"
	"github.com/civicwatch/civicwatch/internal/setup/telemetry"
	"github.com/civicwatch/civicwatch/internal/voting"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
)

// App bundles all core dependencies and services needed by the application.
// Each field represents a major subsystem that needs initialization and cleanup.
type App struct {
	Config       *config.Config     // Application configuration
	ConfigDir    string             // Directory the config was loaded from
	Logger       *zap.Logger        // Main application logger
	DBLogger     *zap.Logger        // Database-specific logger
	DB           database.Client    // Database connection pool
	RedisManager *redis.Manager     // Redis connection manager
	LogManager   *telemetry.Manager // Log management system
	Services     *Services          // Report, voting and alerting services
}

// InitializeApp bootstraps all application dependencies in the correct order,
// ensuring each component has its required dependencies available.
func InitializeApp(ctx context.Context, serviceType telemetry.ServiceType, logDir string) (*App, error) {
	// Load app configuration
	cfg, configDir, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	// Logging system is initialized next to capture setup issues
	logManager := telemetry.NewManager(serviceType, logDir, &cfg.Common.Debug)

	logger, dbLogger, err := logManager.GetLoggers()
	if err != nil {
		return nil, err
	}

	// Redis manager provides connection pools for the stats cache
	redisManager := redis.NewManager(&cfg.Common.Redis, logger)

	// Initialize database with migration check
	// Detection workers and alert resolution each pin a session for the category lock
	db, err := checkAndRunMigrations(ctx, &cfg.Common.PostgreSQL, dbLogger, database.Options{
		Service:     "civicwatch-" + serviceType.String(),
		LockHolders: cfg.Common.Alerting.MaxConcurrent + 1,
	})
	if err != nil {
		return nil, err
	}

	// Stats cache is optional and only used when Redis is enabled
	var cache voting.StatsCache

	if redisManager.Enabled() {
		client, err := redisManager.GetClient(redis.StatsCacheDBIndex)
		if err != nil {
			logger.Error("Failed to connect to Redis, continuing without stats cache", zap.Error(err))
		} else {
			cache = voting.NewRedisStatsCache(client, cfg.Common.Voting.StatsCacheDuration(), logger)
		}
	}

	// Alert detection runs on a dispatcher detached from request contexts
	dispatcher := NewPoolDispatcher(context.WithoutCancel(ctx), &cfg.Common.Alerting, logger)
	services := NewServices(&cfg.Common, PostgresStores(db), cache, dispatcher, logger)

	logger.Info("Application initialized",
		zap.String("service", serviceType.String()),
		zap.String("configDir", configDir),
		zap.String("sessionDir", logManager.GetCurrentSessionDir()))

	// Bundle all initialized components
	return &App{
		Config:       cfg,
		ConfigDir:    configDir,
		Logger:       logger,
		DBLogger:     dbLogger.Named("database"),
		DB:           db,
		RedisManager: redisManager,
		LogManager:   logManager,
		Services:     services,
	}, nil
}

// Cleanup ensures graceful shutdown of all components in reverse initialization order.
// Logs but does not fail on cleanup errors to ensure all components get cleanup attempts.
func (s *App) Cleanup() {
	// Let in-flight alert detections finish while the stores are still open
	s.Services.Close()

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
func checkAndRunMigrations(
	ctx context.Context, cfg *config.PostgreSQL, dbLogger *zap.Logger, opts database.Options,
) (database.Client, error) {
	tempDB, err := database.NewConnection(ctx, cfg, dbLogger, opts)
	if err != nil {
		return nil, err
	}

	migrator := migrate.NewMigrator(tempDB.DB(), migrations.Migrations)

	ms, err := migrator.MigrationsWithStatus(ctx)
	if err != nil {
		tempDB.Close()
		return nil, fmt.Errorf("failed to check migration status: %w", err)
	}

	var db database.Client

	unapplied := ms.Unapplied()
	if len(unapplied) > 0 {
		log.Println("Database migrations are pending. Would you like to run them now? (y/N)")

		var response string

		_, _ = fmt.Scanln(&response)

		if response == "y" || response == "Y" {
			tempDB.Close()

			opts.AutoMigrate = true
			db, err = database.NewConnection(ctx, cfg, dbLogger, opts)
		} else {
			log.Fatalf("Closing program due to incomplete migrations")
		}
	} else {
		db = tempDB
	}

	return db, err
}
