package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/civicwatch/civicwatch/internal/database"
	"github.com/civicwatch/civicwatch/internal/database/migrations"
	"github.com/civicwatch/civicwatch/internal/setup/config"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var (
	ErrNameRequired   = errors.New("NAME argument required")
	ErrSchemaMismatch = errors.New("schema is missing required objects")
)

func main() {
	tool := &dbTool{}
	defer tool.close()

	if err := tool.command().Run(context.Background(), os.Args); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

// dbTool holds the connection shared by every subcommand. It connects lazily so
// help output works without a reachable database.
type dbTool struct {
	db       database.Client
	migrator *migrate.Migrator
	logger   *zap.Logger
}

func (t *dbTool) command() *cli.Command {
	return &cli.Command{
		Name:  "db",
		Usage: "Manage the civicwatch Postgres schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "directory holding common.toml; the default search paths are used when empty",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Initialize migration tables",
				Action: t.withDB(t.init),
			},
			{
				Name:   "migrate",
				Usage:  "Run pending migrations",
				Action: t.withDB(t.migrate),
			},
			{
				Name:   "rollback",
				Usage:  "Rollback the last migration group",
				Action: t.withDB(t.rollback),
			},
			{
				Name:   "status",
				Usage:  "Show migration status",
				Action: t.withDB(t.status),
			},
			{
				Name:   "check",
				Usage:  "Verify the tables and indexes reports, votes and alerts depend on",
				Action: t.withDB(t.check),
			},
			{
				Name:      "create",
				Usage:     "Create a new Go migration file",
				ArgsUsage: "NAME",
				Action:    t.withDB(t.create),
			},
		},
	}
}

// withDB connects before running the action.
func (t *dbTool) withDB(action cli.ActionFunc) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		if err := t.connect(ctx, c.Root().String("config")); err != nil {
			return err
		}
		return action(ctx, c)
	}
}

// connect loads configuration and opens the database.
func (t *dbTool) connect(ctx context.Context, configDir string) error {
	var (
		cfg *config.Config
		err error
	)
	if configDir != "" {
		cfg, _, err = config.LoadConfigFrom([]string{filepath.Clean(configDir)})
	} else {
		cfg, _, err = config.LoadConfig()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	t.logger, err = zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	// Migrations are only ever applied explicitly from this tool
	t.db, err = database.NewConnection(ctx, &cfg.Common.PostgreSQL, t.logger, database.Options{
		Service: "civicwatch-db",
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	t.migrator = migrate.NewMigrator(t.db.DB(), migrations.Migrations)

	return nil
}

func (t *dbTool) close() {
	if t.db != nil {
		_ = t.db.Close()
	}
	if t.logger != nil {
		_ = t.logger.Sync()
	}
}

func (t *dbTool) init(ctx context.Context, _ *cli.Command) error {
	if err := t.migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to init migration tables: %w", err)
	}

	t.logger.Info("Migration tables ready")
	return nil
}

func (t *dbTool) migrate(ctx context.Context, _ *cli.Command) error {
	if err := t.migrator.Lock(ctx); err != nil {
		return fmt.Errorf("failed to lock migrations: %w", err)
	}
	defer t.migrator.Unlock(ctx) //nolint:errcheck

	group, err := t.migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	if group.IsZero() {
		t.logger.Info("Schema is up to date")
		return nil
	}

	t.logger.Info("Applied migrations",
		zap.Int64("group", group.ID),
		zap.Int("count", len(group.Migrations)),
		zap.String("migrations", group.Migrations.String()))

	// A fresh schema must hold everything the services query
	return t.verify(ctx)
}

func (t *dbTool) rollback(ctx context.Context, _ *cli.Command) error {
	if err := t.migrator.Lock(ctx); err != nil {
		return fmt.Errorf("failed to lock migrations: %w", err)
	}
	defer t.migrator.Unlock(ctx) //nolint:errcheck

	group, err := t.migrator.Rollback(ctx)
	if err != nil {
		return fmt.Errorf("failed to roll back: %w", err)
	}

	if group.IsZero() {
		t.logger.Info("No migration group to roll back")
		return nil
	}

	t.logger.Warn("Rolled back migrations",
		zap.Int64("group", group.ID),
		zap.String("migrations", group.Migrations.String()))
	return nil
}

func (t *dbTool) status(ctx context.Context, _ *cli.Command) error {
	ms, err := t.migrator.MigrationsWithStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	for _, m := range ms {
		t.logger.Info("Migration",
			zap.String("name", m.Name),
			zap.String("comment", m.Comment),
			zap.Bool("applied", m.IsApplied()),
			zap.Int64("group", m.GroupID))
	}

	unapplied := ms.Unapplied()
	t.logger.Info("Migration status",
		zap.Int("total", len(ms)),
		zap.Int("pending", len(unapplied)),
		zap.String("lastGroup", ms.LastGroup().String()))
	return nil
}

func (t *dbTool) check(ctx context.Context, _ *cli.Command) error {
	return t.verify(ctx)
}

func (t *dbTool) verify(ctx context.Context) error {
	report, err := inspectSchema(ctx, t.db.DB())
	if err != nil {
		return err
	}

	if !report.ok() {
		t.logger.Error("Schema check failed",
			zap.Strings("missingTables", report.missingTables),
			zap.Strings("missingIndexes", report.missingIndexes))
		return ErrSchemaMismatch
	}

	t.logger.Info("Schema check passed",
		zap.Int("tables", len(requiredTables)),
		zap.Int("indexes", len(requiredIndexes)))
	return nil
}

func (t *dbTool) create(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return ErrNameRequired
	}

	mf, err := t.migrator.CreateGoMigration(ctx, c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to create migration: %w", err)
	}

	t.logger.Info("Created Go migration",
		zap.String("name", mf.Name),
		zap.String("path", mf.Path))
	return nil
}
