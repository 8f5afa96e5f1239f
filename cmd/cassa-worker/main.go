package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"cassa/internal/amqp"
	"cassa/internal/cli"
	"cassa/internal/config"
	"cassa/internal/log"
	"cassa/internal/report"
	gsheet "cassa/internal/sheets/google"
	"cassa/internal/worker"
)

func main() {
	if err := cli.LoadEnvFile(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg).WithComponent(log.ComponentApp)
	logger.Info("Starting cassa-worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("cassa-worker stopped with error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	if !cfg.SheetsEnabled() {
		return errors.New("GOOGLE_SPREADSHEET_ID is required for the sync worker")
	}
	if cfg.DataBackend == config.BackendMemory {
		return errors.New("the sync worker needs a shared backend, not memory")
	}

	store, cleanup, err := cli.OpenLedgerStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	sheets, err := gsheet.NewFromEnv(ctx, logger)
	if err != nil {
		return fmt.Errorf("initialize Google Sheets client: %w", err)
	}

	syncWorker := worker.NewSyncWorker(store, report.NewProjector(cfg.CurrencySymbol, loc), sheets, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return syncWorker.Run(gctx, cfg.SyncInterval)
	})

	if cfg.AMQPURL != "" {
		consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			return fmt.Errorf("initialize AMQP client: %w", err)
		}
		defer consumer.Close()
		g.Go(func() error {
			return consumer.ConsumeEvents(gctx, syncWorker.HandleEvent)
		})
	} else {
		logger.Info("AMQP disabled, relying on periodic sync", "interval", cfg.SyncInterval.String())
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
