package models

import (
	"context"
	"database/sql/driver"
	"fmt"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// LockModel provides cluster-wide mutual exclusion using Postgres advisory locks.
type LockModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewLock creates a new lock model.
func NewLock(db *bun.DB, logger *zap.Logger) *LockModel {
	return &LockModel{
		db:     db,
		logger: logger.Named("db_lock"),
	}
}

// WithLock runs fn while holding a session advisory lock derived from key.
// The lock is held on a dedicated connection and released when fn returns. If the
// unlock fails the connection is discarded so the lock cannot leak into the pool.
func (r *LockModel) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock(hashtext(?))", key); err != nil {
		return fmt.Errorf("failed to acquire advisory lock %q: %w", key, err)
	}

	defer func() {
		// Unlock even if ctx was canceled while fn ran
		unlockCtx := context.WithoutCancel(ctx)
		if _, err := conn.ExecContext(unlockCtx, "SELECT pg_advisory_unlock(hashtext(?))", key); err != nil {
			r.logger.Error("Failed to release advisory lock, discarding connection",
				zap.String("key", key), zap.Error(err))
			discardConn(conn)
		}
	}()

	return fn(ctx)
}

// discardConn closes the session instead of returning it to the pool, which
// releases every session lock it still holds.
func discardConn(conn bun.Conn) {
	_ = conn.Raw(func(any) error {
		return driver.ErrBadConn
	})
}
