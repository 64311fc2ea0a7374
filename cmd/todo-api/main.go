// Command todo-api serves the todo collection over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fluxorio/todolist/internal/api"
	"github.com/fluxorio/todolist/internal/settings"
	"github.com/fluxorio/todolist/internal/store"
	"github.com/fluxorio/todolist/pkg/core"
	"github.com/fluxorio/todolist/pkg/observability/otel"
	"github.com/fluxorio/todolist/pkg/observability/prometheus"
	"github.com/fluxorio/todolist/pkg/web"
)

var version = "dev"

func main() {
	configPath := flag.String("config", envOr("CONFIG_PATH", "config.yaml"), "path to a YAML, JSON or TOML settings file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		core.NewDefaultLogger().Errorf("todo-api: %v", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := settings.Load(configPath)
	if err != nil {
		return err
	}

	logger := core.NewLevelLogger(os.Stdout, cfg.Log.Debug)
	logger.Infof("starting %s %s (store=%s, prefix=%q)", api.ServiceName, version, cfg.Store.Driver, cfg.Server.Prefix)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Initialize(ctx, otel.Config{
		ServiceName:    api.ServiceName,
		ServiceVersion: version,
		Environment:    cfg.Tracing.Environment,
		Exporter:       cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		SampleRate:     cfg.Tracing.SampleRate,
	})
	if err != nil {
		return err
	}
	if otel.IsInitialized() {
		logger.Infof("tracing spans to %s exporter", cfg.Tracing.Exporter)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warnf("tracing shutdown: %v", err)
		}
	}()

	metrics := prometheus.GetMetrics()
	tasks, err := store.Open(ctx, cfg.Store, metrics, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := tasks.Close(); err != nil {
			logger.Warnf("store close: %v", err)
		}
	}()

	router := api.NewRouter(tasks, api.Options{
		Prefix:         cfg.Server.Prefix,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ExposePanics:   cfg.Server.ExposePanics,
		Logger:         logger,
		Metrics:        metrics,
		Gatherer:       prometheus.DefaultRegistry,
	})

	serverCfg := web.DefaultFastHTTPServerConfig(cfg.Server.Addr)
	serverCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	server := web.NewFastHTTPServer(router, serverCfg, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return errors.New("server stopped unexpectedly")
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := server.Stop(); err != nil {
		return err
	}
	logger.Info("stopped")
	return nil
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
