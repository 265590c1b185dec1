package main

import (
	"context"
	"errors"
	"fmt"

	"nippo/internal/backend"
	"nippo/internal/cli"
	"nippo/internal/config"
	applog "nippo/internal/log"
	"nippo/internal/worker"
)

func main() {
	cfg, logger, err := cli.Bootstrap(applog.ComponentWorker, nil)
	if err != nil {
		cli.Fatal(nil, "Startup failed", err)
	}
	logger.Info("Starting nippo-worker")

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		stop()
		cli.Fatal(logger, "Worker stopped with error", err)
	}
	logger.Info("nippo-worker stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *applog.Logger) error {
	if !cfg.AMQPEnabled() {
		return errors.New("AMQP_URL is not set; the worker has no events to consume")
	}
	if cfg.DataBackend == "memory" {
		logger.Warn("Memory backend is process local; the worker will not see reports written by the server")
	}

	exporter, err := backend.OpenExporter(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize google sheets exporter: %w", err)
	}
	logger.Info("Google Sheets exporter initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	store, err := backend.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	events, err := backend.OpenEvents(cfg)
	if err != nil {
		return err
	}
	defer events.Close()

	logger.Info("Consuming report events",
		"queue", cfg.AMQPQueue,
		"reconcile_interval", cfg.ReconcileInterval.String())
	return worker.NewExportWorker(store, exporter).Run(ctx, events, cfg.ReconcileInterval)
}
