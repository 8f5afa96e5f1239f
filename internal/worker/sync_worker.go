// Package worker keeps the configured spreadsheet in step with the ledger
// stored in a shared backend.
package worker

import (
	"context"
	"sync"
	"time"

	"cassa/internal/amqp"
	"cassa/internal/ledger"
	"cassa/internal/log"
	"cassa/internal/report"
	"cassa/internal/sheets"
)

// SyncWorker rewrites the transaction sheet from the persisted ledger. The
// store is reloaded before every push, so the worker sees changes made by
// other processes.
type SyncWorker struct {
	store     *ledger.Store
	projector report.Projector
	sheets    sheets.SheetWriter
	logger    *log.Logger

	mu       sync.Mutex
	lastRef  string
	lastRows int
}

func NewSyncWorker(store *ledger.Store, projector report.Projector, writer sheets.SheetWriter, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.Nop()
	}
	return &SyncWorker{
		store:     store,
		projector: projector,
		sheets:    writer,
		logger:    logger.WithComponent(log.ComponentSheets),
	}
}

// HandleEvent resyncs the sheet after a ledger event.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	w.logger.InfoContext(ctx, "Processing ledger event", "op", ev.Op, log.FieldTxID, ev.ID)
	return w.Sync(ctx)
}

// Sync pushes the current ledger. An empty ledger leaves the sheet untouched.
func (w *SyncWorker) Sync(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	txs := w.store.Load(ctx)
	if len(txs) == 0 {
		w.logger.DebugContext(ctx, "Ledger is empty, skipping sheet sync")
		return nil
	}

	sheet := w.projector.Sheet(txs)
	ref, err := w.sheets.WriteSheet(ctx, sheet)
	if err != nil {
		return err
	}
	w.lastRef, w.lastRows = ref, len(sheet.Rows)
	w.logger.InfoContext(ctx, "Sheet synced",
		log.FieldSheetsRef, ref, log.FieldCount, len(sheet.Rows), log.FieldOperation, log.OpExport)
	return nil
}

// Run syncs once, then again on every tick until ctx is done. This catches
// events lost while the worker was down.
func (w *SyncWorker) Run(ctx context.Context, interval time.Duration) error {
	if err := w.Sync(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup sheet sync failed", log.FieldError, err.Error())
	}
	if interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Sync(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic sheet sync failed", log.FieldError, err.Error())
			}
		}
	}
}

// LastSync returns the range reference and row count of the last successful
// push.
func (w *SyncWorker) LastSync() (string, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastRef, w.lastRows
}
