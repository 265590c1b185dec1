// Package cli holds the start-up steps shared by cmd/nippo,
// cmd/nippo-worker and cmd/nippoctl.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"nippo/internal/config"
	applog "nippo/internal/log"
)

// LoadEnvFile loads .env for local development; a missing file is ignored.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadConfig reads and validates configuration.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogger builds the process logger at the configured level and makes
// it the slog default.
func SetupLogger(level, component string, out io.Writer) *applog.Logger {
	if out == nil {
		out = os.Stdout
	}
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(level),
		Component: component,
		Output:    out,
	})
	applog.SetDefault(logger)
	return logger
}

// Bootstrap runs the common start-up sequence: .env, config, logger.
// A nil out logs to stdout.
func Bootstrap(component string, out io.Writer) (*config.Config, *applog.Logger, error) {
	LoadEnvFile()
	cfg, err := LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, SetupLogger(cfg.LogLevel, component, out), nil
}

// Fatal logs err and exits with status 1.
func Fatal(logger *applog.Logger, msg string, err error, args ...any) {
	if logger == nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
		os.Exit(1)
	}
	logger.Error(msg, append([]any{applog.FieldError, err}, args...)...)
	os.Exit(1)
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// Shutdown runs stop with a bounded context once ctx is done.
func Shutdown(ctx context.Context, logger *applog.Logger, timeout time.Duration, stop func(context.Context) error) error {
	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := stop(shutdownCtx); err != nil {
		logger.Error("Shutdown error", applog.FieldError, err)
		return err
	}
	logger.Info("Shutdown complete")
	return nil
}
