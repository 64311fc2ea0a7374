// Package store selects and instruments the task.Store driver.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/fluxorio/todolist/internal/store/kvstore"
	"github.com/fluxorio/todolist/internal/store/memstore"
	"github.com/fluxorio/todolist/internal/store/pgstore"
	"github.com/fluxorio/todolist/internal/store/sqlstore"
	"github.com/fluxorio/todolist/internal/task"
	"github.com/fluxorio/todolist/pkg/core"
	"github.com/fluxorio/todolist/pkg/observability/prometheus"
)

// Driver names
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverNATS     = "nats"
)

// Drivers lists the accepted driver names
var Drivers = []string{DriverMemory, DriverSQLite, DriverPostgres, DriverPgx, DriverNATS}

// Config selects and configures the store
type Config struct {
	Driver   string `yaml:"driver" json:"driver" toml:"driver"`
	DSN      string `yaml:"dsn" json:"dsn" toml:"dsn"`
	MaxConns int    `yaml:"maxConns" json:"maxConns" toml:"maxConns"`
	// Bucket is the NATS KV bucket (nats driver only)
	Bucket string `yaml:"bucket" json:"bucket" toml:"bucket"`
}

// Open builds the configured driver wrapped with instrumentation.
// A store that cannot be reached yet is logged, not returned as an error:
// requests fail individually until it comes up.
func Open(ctx context.Context, cfg Config, metrics *prometheus.Metrics, logger core.Logger) (*Instrumented, error) {
	if logger == nil {
		logger = core.NewDefaultLogger()
	}
	if metrics == nil {
		metrics = prometheus.GetMetrics()
	}

	var (
		s   task.Store
		err error
	)
	switch cfg.Driver {
	case DriverMemory, "":
		cfg.Driver = DriverMemory
		s = memstore.New()
	case DriverSQLite, DriverPostgres:
		var ss *sqlstore.Store
		ss, err = sqlstore.Open(cfg.Driver, cfg.DSN, cfg.MaxConns)
		if err == nil {
			if regErr := metrics.RegisterDBStats(ss.Pool().DB(), cfg.Driver); regErr != nil {
				logger.Warnf("db stats collector not registered: %v", regErr)
			}
			s = ss
		}
	case DriverPgx:
		s, err = pgstore.Open(ctx, cfg.DSN, int32(cfg.MaxConns))
	case DriverNATS:
		s, err = kvstore.Open(kvstore.Config{URL: cfg.DSN, Bucket: cfg.Bucket})
	default:
		return nil, core.NewError(core.CodeInvalidConfig, fmt.Sprintf("unknown store driver %q", cfg.Driver))
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
	}

	inst := Instrument(s, cfg.Driver, metrics, logger)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := inst.Ping(pingCtx); err != nil {
		logger.Warnf("%s store not reachable yet: %v", cfg.Driver, err)
	} else {
		logger.Infof("%s store connected", cfg.Driver)
	}
	return inst, nil
}
