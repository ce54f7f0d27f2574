package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bytedance/sonic"
	"github.com/civicwatch/civicwatch/internal/database/dbretry"
	"github.com/civicwatch/civicwatch/internal/database/migrations"
	"github.com/civicwatch/civicwatch/internal/setup/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bunjson"
	"github.com/uptrace/bun/extra/bunotel"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
)

// sonicProvider routes bun's JSON columns through Sonic.
type sonicProvider struct{}

func (sonicProvider) Marshal(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

func (sonicProvider) Unmarshal(data []byte, v any) error {
	return sonic.Unmarshal(data, v)
}

func (sonicProvider) NewEncoder(w io.Writer) bunjson.Encoder {
	return sonic.ConfigDefault.NewEncoder(w)
}

func (sonicProvider) NewDecoder(r io.Reader) bunjson.Decoder {
	return sonic.ConfigDefault.NewDecoder(r)
}

// Options controls how a connection is opened for a particular process.
type Options struct {
	// Service is reported as application_name so category lock holders
	// can be told apart in pg_stat_activity.
	Service string
	// LockHolders is the number of goroutines that may hold a category
	// lock at the same time. Each one pins a session for the duration of
	// the lock and still needs a second connection for its queries.
	LockHolders int
	// AutoMigrate applies pending migrations before returning.
	AutoMigrate bool
}

// Client is the database handle shared by the report, vote and alert stores.
type Client interface {
	// Model returns the repository containing all model operations.
	Model() *Repository
	// Ping checks that the database is reachable.
	Ping(ctx context.Context) error
	// Close gracefully shuts down the database connection.
	Close() error
	// DB returns the underlying bun.DB instance.
	DB() *bun.DB
}

type clientImpl struct {
	db     *bun.DB
	logger *zap.Logger
	repo   *Repository
}

// NewConnection opens the pool, waits for the database to answer and
// optionally applies pending migrations under the migration lock.
func NewConnection(
	ctx context.Context, cfg *config.PostgreSQL, logger *zap.Logger, opts Options,
) (Client, error) {
	service := opts.Service
	if service == "" {
		service = "civicwatch"
	}

	// Time windows are computed in UTC on both sides of the wire
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithAddr(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		pgdriver.WithUser(cfg.User),
		pgdriver.WithPassword(cfg.Password),
		pgdriver.WithDatabase(cfg.DBName),
		pgdriver.WithInsecure(true),
		pgdriver.WithApplicationName(service),
		pgdriver.WithConnParams(map[string]any{"timezone": "UTC"}),
	))

	maxOpen := poolSize(cfg.MaxOpenConns, opts.LockHolders)
	if maxOpen != cfg.MaxOpenConns {
		logger.Warn("Raising connection pool to fit category lock holders",
			zap.Int("configured", cfg.MaxOpenConns),
			zap.Int("lockHolders", opts.LockHolders),
			zap.Int("maxOpenConns", maxOpen))
	}

	sqldb.SetMaxOpenConns(maxOpen)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Minute)
	sqldb.SetConnMaxIdleTime(time.Duration(cfg.MaxIdleTime) * time.Minute)

	bunjson.SetProvider(sonicProvider{})

	db := bun.NewDB(sqldb, pgdialect.New())
	db.AddQueryHook(NewHook(logger))
	db.AddQueryHook(bunotel.NewQueryHook(bunotel.WithDBName(cfg.DBName)))

	client := &clientImpl{
		db:     db,
		logger: logger,
		repo:   NewRepository(db, logger),
	}

	// The API may start before Postgres accepts connections
	if err := client.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	if opts.AutoMigrate {
		if err := applyMigrations(ctx, db, logger); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	logger.Info("Database connection established",
		zap.String("service", service),
		zap.Int("maxOpenConns", maxOpen))

	return client, nil
}

// poolSize returns the smallest pool that lets every lock holder run its
// queries alongside the session it pins, plus one connection for reads.
// Zero means unlimited and is kept as is.
func poolSize(configured, lockHolders int) int {
	if configured <= 0 || lockHolders <= 0 {
		return configured
	}

	return max(configured, 2*lockHolders+1)
}

// applyMigrations runs pending migrations while holding bun's migration
// lock so replicas starting together do not apply the same group twice.
func applyMigrations(ctx context.Context, db *bun.DB, logger *zap.Logger) (err error) {
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}

	if err := migrator.Lock(ctx); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}

	defer func() {
		if unlockErr := migrator.Unlock(ctx); unlockErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to release migration lock: %w", unlockErr))
		}
	}()

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if !group.IsZero() {
		logger.Info("Automatically ran migrations",
			zap.String("group", group.String()),
			zap.Int("count", len(group.Migrations)))
	}

	return nil
}

// Ping retries with backoff until the database answers or ctx ends.
func (c *clientImpl) Ping(ctx context.Context) error {
	return dbretry.NoResult(ctx, c.db.PingContext)
}

// Close gracefully shuts down the database connection.
func (c *clientImpl) Close() error {
	err := c.db.Close()
	if err != nil {
		c.logger.Error("Failed to close database connection", zap.Error(err))
		return err
	}

	c.logger.Info("Database connection closed")

	return nil
}

// Model returns the repository containing all model operations.
func (c *clientImpl) Model() *Repository {
	return c.repo
}

// DB returns the underlying bun.DB instance.
func (c *clientImpl) DB() *bun.DB {
	return c.db
}
