package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cassa/internal/core"
	"cassa/internal/log"
	"cassa/internal/report"
)

// ErrNoTransactions is returned by exports of an empty ledger.
var ErrNoTransactions = errors.New("no transactions to export")

// EventPublisher announces ledger mutations to other systems.
type EventPublisher interface {
	PublishTransactionCreated(ctx context.Context, tx core.Transaction) error
	PublishTransactionDeleted(ctx context.Context, id int64) error
}

// Service is the entry point for creating, removing and reporting on
// transactions. The store is the single source of truth; every read
// recomputes from its current snapshot.
type Service struct {
	store     *Store
	ids       *IDGenerator
	events    EventPublisher
	projector report.Projector
	loc       *time.Location
	now       func() time.Time
	logger    *log.Logger
}

type ServiceOption func(*Service)

func WithEvents(p EventPublisher) ServiceOption {
	return func(s *Service) { s.events = p }
}

// WithLocation sets the timezone used for day and month buckets.
func WithLocation(loc *time.Location) ServiceOption {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithSymbol(symbol string) ServiceOption {
	return func(s *Service) {
		if symbol != "" {
			s.projector.Symbol = symbol
		}
	}
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithServiceLogger(l *log.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentLedger)
		}
	}
}

// NewService loads the store and seeds the id generator with the largest
// persisted id.
func NewService(ctx context.Context, store *Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:     store,
		projector: report.Projector{Symbol: report.DefaultSymbol},
		loc:       time.UTC,
		now:       time.Now,
		logger:    log.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.projector.Location = s.loc
	s.ids = NewIDGenerator(s.now)

	store.Load(ctx)
	s.ids.Seed(store.MaxID())
	return s
}

// Create validates the input, stamps it with a fresh id and the current
// instant, and appends it. Nothing is stored when validation fails.
func (s *Service) Create(ctx context.Context, in core.Input) (core.Transaction, error) {
	at := s.now()
	tx, err := core.NewTransaction(in, s.ids.Next(), at)
	if err != nil {
		return core.Transaction{}, err
	}

	if err := s.store.Append(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("append transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction recorded",
		log.NewFields().WithTransaction(tx).WithOperation(log.OpCreate).ToSlice()...)

	if s.events != nil {
		if err := s.events.PublishTransactionCreated(ctx, tx); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish transaction event",
				log.NewFields().WithOperation(log.OpPublish).WithError(err).ToSlice()...)
		}
	}
	return tx, nil
}

// Delete removes the transaction with the given id. It reports false when
// no such transaction exists.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	removed, err := s.store.Remove(ctx, id)
	if err != nil {
		return false, fmt.Errorf("remove transaction %d: %w", id, err)
	}
	if !removed {
		return false, nil
	}

	s.logger.InfoContext(ctx, "Transaction deleted", log.FieldTxID, id, log.FieldOperation, log.OpDelete)

	if s.events != nil {
		if err := s.events.PublishTransactionDeleted(ctx, id); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish delete event",
				log.NewFields().WithOperation(log.OpPublish).WithError(err).ToSlice()...)
		}
	}
	return true, nil
}

// Transactions returns the records in insertion order.
func (s *Service) Transactions() []core.Transaction {
	return s.store.All()
}

// Recent returns the records newest first.
func (s *Service) Recent() []core.Transaction {
	txs := s.store.All()
	for i, j := 0, len(txs)-1; i < j; i, j = i+1, j-1 {
		txs[i], txs[j] = txs[j], txs[i]
	}
	return txs
}

func (s *Service) Statistics() core.Statistics {
	return core.Aggregate(s.store.All(), s.now().In(s.loc))
}

func (s *Service) Projector() report.Projector {
	return s.projector
}

// Report projects the printable document.
func (s *Service) Report() (report.Document, error) {
	txs := s.store.All()
	if len(txs) == 0 {
		return report.Document{}, ErrNoTransactions
	}
	now := s.now().In(s.loc)
	return s.projector.Document(core.Aggregate(txs, now), txs, now), nil
}

// Sheet projects the spreadsheet export.
func (s *Service) Sheet() (report.Sheet, error) {
	txs := s.store.All()
	if len(txs) == 0 {
		return report.Sheet{}, ErrNoTransactions
	}
	return s.projector.Sheet(txs), nil
}
