package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"go.uber.org/zap/zaptest"
)

func TestPoolSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		configured  int
		lockHolders int
		want        int
	}{
		{name: "unlimited pool stays unlimited", configured: 0, lockHolders: 5, want: 0},
		{name: "no lock holders", configured: 3, lockHolders: 0, want: 3},
		{name: "large pool is kept", configured: 25, lockHolders: 5, want: 25},
		{name: "small pool is raised", configured: 4, lockHolders: 5, want: 11},
		{name: "exact fit", configured: 11, lockHolders: 5, want: 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, poolSize(tt.configured, tt.lockHolders))
		})
	}
}

// startupConnector fails the first dials with the given errors, then connects.
type startupConnector struct {
	failures []error
	dials    atomic.Int32
}

func (c *startupConnector) Connect(context.Context) (driver.Conn, error) {
	n := int(c.dials.Add(1))
	if n <= len(c.failures) {
		return nil, c.failures[n-1]
	}
	return idleConn{}, nil
}

func (c *startupConnector) Driver() driver.Driver { return nil }

type idleConn struct{}

func (idleConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("prepare not supported") }
func (idleConn) Begin() (driver.Tx, error)           { return nil, errors.New("transactions not supported") }
func (idleConn) Close() error                        { return nil }
func (idleConn) Ping(context.Context) error          { return nil }

func setupClient(t *testing.T, connector *startupConnector) *clientImpl {
	t.Helper()

	logger := zaptest.NewLogger(t)
	db := bun.NewDB(sql.OpenDB(connector), pgdialect.New())
	t.Cleanup(func() { _ = db.Close() })

	return &clientImpl{db: db, logger: logger, repo: NewRepository(db, logger)}
}

func TestPingWaitsForDatabaseStartup(t *testing.T) {
	t.Parallel()

	connector := &startupConnector{failures: []error{errors.New("dial tcp: connection refused")}}
	client := setupClient(t, connector)

	require.NoError(t, client.Ping(t.Context()))
	assert.Equal(t, int32(2), connector.dials.Load())
}

func TestPingStopsOnPermanentFailure(t *testing.T) {
	t.Parallel()

	connector := &startupConnector{failures: []error{errors.New("password authentication failed")}}
	client := setupClient(t, connector)

	err := client.Ping(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password authentication failed")
	assert.Equal(t, int32(1), connector.dials.Load())
}
