package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"cassa/internal/amqp"
	"cassa/internal/cli"
	"cassa/internal/config"
	apphttp "cassa/internal/http"
	"cassa/internal/ledger"
	"cassa/internal/log"
	gsheet "cassa/internal/sheets/google"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load .env file for local development
	if err := cli.LoadEnvFile(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg).WithComponent(log.ComponentApp)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("cassa stopped with error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	store, cleanup, err := cli.OpenLedgerStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	opts := []ledger.ServiceOption{
		ledger.WithLocation(loc),
		ledger.WithSymbol(cfg.CurrencySymbol),
		ledger.WithServiceLogger(logger),
	}

	// Ledger events are optional; a broker that is down at start-up only
	// disables them.
	if cfg.AMQPURL != "" {
		events, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, ledger events disabled", log.FieldError, err.Error())
		} else {
			defer events.Close()
			opts = append(opts, ledger.WithEvents(events))
			logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	svc := ledger.NewService(ctx, store, opts...)
	logger.Info("Ledger loaded", log.FieldCount, len(svc.Transactions()), "timezone", loc.String())

	serverOpts := []apphttp.Option{
		apphttp.WithLogger(logger),
		apphttp.WithRateLimit(cfg.RateLimitPerMinute),
	}
	if cfg.SheetsEnabled() {
		sheets, err := gsheet.NewFromEnv(ctx, logger)
		if err != nil {
			return fmt.Errorf("initialize Google Sheets client: %w", err)
		}
		serverOpts = append(serverOpts, apphttp.WithSheetWriter(sheets))
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, serverOpts...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	logger.Info("Starting cassa server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
