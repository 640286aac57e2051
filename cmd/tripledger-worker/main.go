package main

import (
	"context"
	"errors"
	"os"
	"time"

	"tripledger/internal/amqp"
	"tripledger/internal/backend"
	"tripledger/internal/cli"
	"tripledger/internal/export/gsheet"
	"tripledger/internal/log"
	"tripledger/internal/services"
	"tripledger/internal/worker"
)

// reconnectDelay paces re-dials after the broker connection drops.
const reconnectDelay = 5 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	structured := log.NewStructuredLogger(logger)

	logger.Info("Starting tripledger-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateStore(context.Background(), backendConfig)
	if err != nil {
		logger.Error("Failed to create store", "error", err, "backend", backendConfig.Type)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Store cleanup failed", "error", err)
			}
		}
	}()
	logger.Info("Store initialized", "backend", backendConfig.Type.String())

	var exporter worker.Exporter
	if cfg.SheetsExportEnabled() {
		sheetsExporter, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets exporter", "error", err)
			os.Exit(1)
		}
		exporter = sheetsExporter
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	service := services.NewLedgerService(result.Store, nil)
	reportWorker := worker.NewReportWorker(service, result.Store, exporter)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	handle := func(msg *amqp.RecomputeMessage) error {
		msgCtx, cancel := context.WithTimeout(ctx, cfg.ConsumeTimeout)
		defer cancel()
		if err := reportWorker.HandleRecompute(msgCtx, msg); err != nil {
			structured.LogError(msgCtx, "Recompute failed", err,
				log.ComponentWorker, log.OpCompute,
				log.LogFields{log.FieldTripID: msg.TripID, log.FieldReason: msg.Reason})
			return err
		}
		return nil
	}

	// Consume until shutdown, re-dialing when the broker connection drops.
	for {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP", "error", err, "retry_in", reconnectDelay)
		} else {
			err = client.ConsumeRecompute(ctx, handle)
			client.Close()
			if errors.Is(err, context.Canceled) {
				break
			}
			logger.Error("Message consumption stopped", "error", err, "retry_in", reconnectDelay)
		}

		select {
		case <-ctx.Done():
			cli.WaitForShutdown(ctx, done)
			return
		case <-time.After(reconnectDelay):
		}
	}

	cli.WaitForShutdown(ctx, done)
}
