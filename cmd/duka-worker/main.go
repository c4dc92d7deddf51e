package main

import (
	"context"
	"errors"
	"os"
	"time"

	"duka/internal/backend"
	"duka/internal/cli"
	"duka/internal/ports"
	"duka/internal/worker"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig()
	logger.Info("Starting duka-worker", "backend", cfg.DataBackend)

	if !backend.BackendType(cfg.DataBackend).Shared() {
		logger.Error("The worker needs a shared backend", "backend", cfg.DataBackend,
			"supported", []string{backend.SQLiteBackend.String(), backend.RedisBackend.String()})
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	ctx := context.Background()
	be := cli.OpenBackend(ctx, logger, cfg)
	if be.AMQP == nil {
		logger.Error("Failed to connect to the broker")
		be.Cleanup()
		os.Exit(1)
	}

	exporter, err := cli.OpenExporter(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets exporter", "error", err)
		be.Cleanup()
		os.Exit(1)
	}

	var target ports.ReportExporter
	if exporter != nil {
		target = exporter
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID, "interval", cfg.ExportInterval)
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}
	w := worker.NewRollupWorker(be.Store, be.Store, target, logger)

	runCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Performing startup roll-up...")
	if err := w.Startup(runCtx); err != nil {
		logger.Error("Startup roll-up failed", "error", err)
	}
	if exporter != nil {
		if err := w.ExportMonthly(runCtx); err != nil {
			logger.Error("Startup export failed", "error", err)
		}
		go w.Run(runCtx, cfg.ExportInterval)
	}

	go func() {
		err := be.AMQP.ConsumeStatusChanged(runCtx, w.HandleStatusChanged)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
			be.Cleanup()
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(runCtx, done)
}
