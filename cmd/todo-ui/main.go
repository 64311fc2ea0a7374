// Command todo-ui is the terminal client of todo-api.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fluxorio/todolist/internal/client"
	"github.com/fluxorio/todolist/internal/settings"
	"github.com/fluxorio/todolist/internal/tui"
	"github.com/fluxorio/todolist/internal/ui"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to a YAML, JSON or TOML settings file")
	baseURL := flag.String("api", "", "API base URL (overrides settings)")
	flag.Parse()

	if err := run(*configPath, *baseURL); err != nil {
		fmt.Fprintf(os.Stderr, "todo-ui: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, baseURL string) error {
	cfg, err := settings.Load(configPath)
	if err != nil {
		return err
	}
	if baseURL != "" {
		cfg.Client.BaseURL = baseURL
	}

	logFile, err := os.OpenFile(cfg.Client.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	logger := tui.NewLogger(logFile, tui.LogOptions{Debug: cfg.Log.Debug})
	logger.Infof("using API at %s", cfg.Client.BaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	model := tui.New(ui.New(logger), client.New(cfg.Client.BaseURL))
	return tui.Run(ctx, model)
}
