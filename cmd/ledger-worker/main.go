package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"ledger/internal/amqp"
	"ledger/internal/cli"
	ports "ledger/internal/sheets"
	gsheet "ledger/internal/sheets/google"
	memsheet "ledger/internal/sheets/memory"
	"ledger/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting ledger-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The worker reads rows from the same backend the server writes to.
	result := cli.InitGateway(ctx, logger, cfg, false)
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	// Export target: Google Sheets when configured, otherwise an
	// in-memory mirror that only serves as a smoke target.
	var appender ports.TransactionAppender
	var deleter ports.TransactionDeleter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		appender, deleter = client, client
		logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		mirror := memsheet.New()
		appender, deleter = mirror, mirror
		logger.Info("Google Sheets disabled - using in-memory mirror")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(result.Gateway, appender, deleter)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeWithReconnect(gctx, cfg.AMQPURL,
			func(msg *amqp.TransactionSyncMessage) error {
				return syncWorker.HandleSyncMessage(gctx, msg)
			},
			func(msg *amqp.TransactionDeleteMessage) error {
				return syncWorker.HandleDeleteMessage(gctx, msg)
			})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
