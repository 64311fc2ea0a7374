// Package db wraps database/sql with validated pool configuration.
package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/fluxorio/todolist/pkg/core"
)

// PoolConfig configures a database/sql connection pool
type PoolConfig struct {
	// DSN is the driver-specific connection string
	DSN string

	// DriverName is the registered database/sql driver ("sqlite3", "postgres")
	DriverName string

	// MaxOpenConns caps open connections
	MaxOpenConns int

	// MaxIdleConns caps idle connections kept for reuse
	MaxIdleConns int

	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultPoolConfig returns pool defaults for dsn and driverName
func DefaultPoolConfig(dsn string, driverName string) PoolConfig {
	return PoolConfig{
		DSN:             dsn,
		DriverName:      driverName,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 10 * time.Minute,
	}
}

// Validate reports the first invalid setting
func (c PoolConfig) Validate() error {
	switch {
	case c.DSN == "":
		return core.NewError(core.CodeInvalidConfig, "DSN cannot be empty")
	case c.DriverName == "":
		return core.NewError(core.CodeInvalidConfig, "DriverName cannot be empty")
	case c.MaxOpenConns <= 0:
		return core.NewError(core.CodeInvalidConfig, "MaxOpenConns must be positive")
	case c.MaxIdleConns < 0:
		return core.NewError(core.CodeInvalidConfig, "MaxIdleConns cannot be negative")
	case c.MaxIdleConns > c.MaxOpenConns:
		return core.NewError(core.CodeInvalidConfig, "MaxIdleConns cannot exceed MaxOpenConns")
	case c.ConnMaxLifetime < 0:
		return core.NewError(core.CodeInvalidConfig, "ConnMaxLifetime cannot be negative")
	case c.ConnMaxIdleTime < 0:
		return core.NewError(core.CodeInvalidConfig, "ConnMaxIdleTime cannot be negative")
	}
	return nil
}

// Pool is a configured *sql.DB
type Pool struct {
	db     *sql.DB
	config PoolConfig
}

// NewPool validates config and opens the pool.
// database/sql connects lazily, so an unreachable server is not an error
// here; call Ping to check connectivity.
func NewPool(config PoolConfig) (*Pool, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open(config.DriverName, config.DSN)
	if err != nil {
		return nil, core.WrapError(core.CodeInvalidConfig, "open "+config.DriverName, err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	return &Pool{db: db, config: config}, nil
}

// Driver returns the configured driver name
func (p *Pool) Driver() string {
	return p.config.DriverName
}

// DB returns the underlying *sql.DB
func (p *Pool) DB() *sql.DB {
	if p == nil || p.db == nil {
		panic("db: pool not initialized")
	}
	return p.db
}

// Close closes the pool
func (p *Pool) Close() error {
	if p == nil || p.db == nil {
		return core.NewError(core.CodeInvalidState, "pool not initialized")
	}
	return p.db.Close()
}

// Ping verifies a connection can be established
func (p *Pool) Ping(ctx context.Context) error {
	if err := p.check(ctx); err != nil {
		return err
	}
	return p.db.PingContext(ctx)
}

// Stats returns pool statistics
func (p *Pool) Stats() sql.DBStats {
	if p == nil || p.db == nil {
		return sql.DBStats{}
	}
	return p.db.Stats()
}

// Query executes a query that returns rows
func (p *Pool) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	if err := p.checkQuery(ctx, query); err != nil {
		return nil, err
	}
	return p.db.QueryContext(ctx, query, args...)
}

// QueryRow executes a query that returns at most one row.
// Invalid input panics since *sql.Row cannot carry an error of its own.
func (p *Pool) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	if err := p.checkQuery(ctx, query); err != nil {
		panic(err)
	}
	return p.db.QueryRowContext(ctx, query, args...)
}

// Exec executes a statement
func (p *Pool) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	if err := p.checkQuery(ctx, query); err != nil {
		return nil, err
	}
	return p.db.ExecContext(ctx, query, args...)
}

func (p *Pool) check(ctx context.Context) error {
	if p == nil || p.db == nil {
		return core.NewError(core.CodeInvalidState, "pool not initialized")
	}
	if ctx == nil {
		return core.NewError(core.CodeInvalidInput, "context cannot be nil")
	}
	return nil
}

func (p *Pool) checkQuery(ctx context.Context, query string) error {
	if err := p.check(ctx); err != nil {
		return err
	}
	if query == "" {
		return core.NewError(core.CodeInvalidInput, "query cannot be empty")
	}
	return nil
}
