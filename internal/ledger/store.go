// Package ledger holds the transaction store and the service that creates,
// removes and reports on transactions.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cassa/internal/blob"
	"cassa/internal/core"
	"cassa/internal/log"
)

// DefaultKey is the logical key the collection is stored under.
const DefaultKey = "nsm_transactions"

// CorruptSuffix is appended to the key to keep an undecodable blob aside
// before it is overwritten.
const CorruptSuffix = ".corrupt"

var (
	ErrDuplicateID = errors.New("duplicate transaction id")

	// ErrLedgerUnavailable is returned by mutations while the persisted
	// collection cannot be read. Writing then would replace it.
	ErrLedgerUnavailable = errors.New("ledger could not be read")
)

// Store is the in-memory collection mirrored to a blob store. Every
// mutation rewrites the whole collection under one key.
type Store struct {
	mu     sync.RWMutex
	blobs  blob.Store
	codec  Codec
	key    string
	txs    []core.Transaction
	ids    map[int64]struct{}
	logger *log.Logger

	// unsynced is set when the last read failed; mutations reread first.
	unsynced bool
	// quarantine holds a blob that did not fully decode until it has been
	// copied under key+CorruptSuffix.
	quarantine []byte
}

type StoreOption func(*Store)

func WithKey(key string) StoreOption {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

func WithCodec(c Codec) StoreOption {
	return func(s *Store) {
		if c != nil {
			s.codec = c
		}
	}
}

func WithLogger(l *log.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentStorage)
		}
	}
}

func NewStore(blobs blob.Store, opts ...StoreOption) *Store {
	s := &Store{
		blobs:  blobs,
		codec:  jsonCodec{},
		key:    DefaultKey,
		ids:    make(map[int64]struct{}),
		logger: log.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Key() string { return s.key }

// Load replaces the in-memory collection with the persisted one and returns
// a copy of it. A missing, unreadable or malformed blob yields an empty
// collection; the problem is logged, never returned. After a failed read,
// Append and Remove retry the read and refuse to write until it succeeds.
func (s *Store) Load(ctx context.Context) []core.Transaction {
	txs, raw, err := s.read(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.replace(txs, raw, err)
	return s.snapshot()
}

// replace must be called with s.mu held.
func (s *Store) replace(txs []core.Transaction, raw []byte, readErr error) {
	s.unsynced = readErr != nil
	s.quarantine = raw
	s.txs = txs
	s.ids = make(map[int64]struct{}, len(txs))
	for _, tx := range txs {
		s.ids[tx.ID] = struct{}{}
	}
}

// ensureSynced rereads the blob after a failed load. Must be called with
// s.mu held.
func (s *Store) ensureSynced(ctx context.Context) error {
	if !s.unsynced {
		return nil
	}
	txs, raw, err := s.read(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLedgerUnavailable, err)
	}
	s.replace(txs, raw, nil)
	return nil
}

// read returns the decoded collection. err is set only when the blob store
// itself fails. raw is the blob when some or all of it could not be decoded.
func (s *Store) read(ctx context.Context) (txs []core.Transaction, raw []byte, err error) {
	fields := log.NewFields().WithOperation(log.OpLoad)
	fields[log.FieldKey] = s.key

	data, found, err := s.blobs.Get(ctx, s.key)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to read ledger, starting empty", fields.WithError(err).ToSlice()...)
		return nil, nil, err
	}
	if !found || len(data) == 0 {
		s.logger.InfoContext(ctx, "No persisted ledger, starting empty", fields.ToSlice()...)
		return nil, nil, nil
	}

	recs, skipped, err := s.codec.Decode(data)
	if err != nil {
		s.logger.WarnContext(ctx, "Malformed ledger blob, starting empty", fields.WithError(err).ToSlice()...)
		return nil, data, nil
	}

	txs = make([]core.Transaction, 0, len(recs))
	seen := make(map[int64]struct{}, len(recs))
	for _, r := range recs {
		tx, err := r.toTransaction()
		if err != nil {
			skipped++
			s.logger.WarnContext(ctx, "Dropping invalid record", log.FieldTxID, r.ID, log.FieldError, err.Error())
			continue
		}
		if _, dup := seen[tx.ID]; dup {
			skipped++
			s.logger.WarnContext(ctx, "Dropping record with duplicate id", log.FieldTxID, tx.ID)
			continue
		}
		seen[tx.ID] = struct{}{}
		txs = append(txs, tx)
	}
	if skipped > 0 {
		raw = data
	}

	fields[log.FieldCount] = len(txs)
	fields["skipped"] = skipped
	s.logger.InfoContext(ctx, "Ledger loaded", fields.ToSlice()...)
	return txs, raw, nil
}

// Append adds tx and persists the collection. On a persistence failure the
// in-memory collection is left as it was.
func (s *Store) Append(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSynced(ctx); err != nil {
		return err
	}
	if _, dup := s.ids[tx.ID]; dup {
		return fmt.Errorf("%w: %d", ErrDuplicateID, tx.ID)
	}

	next := make([]core.Transaction, len(s.txs), len(s.txs)+1)
	copy(next, s.txs)
	next = append(next, tx)

	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.txs = next
	s.ids[tx.ID] = struct{}{}
	return nil
}

// Remove deletes the transaction with the given id and persists. An unknown
// id is not an error and causes no write.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSynced(ctx); err != nil {
		return false, err
	}
	if _, ok := s.ids[id]; !ok {
		return false, nil
	}

	next := make([]core.Transaction, 0, len(s.txs)-1)
	for _, tx := range s.txs {
		if tx.ID != id {
			next = append(next, tx)
		}
	}

	if err := s.persist(ctx, next); err != nil {
		return false, err
	}
	s.txs = next
	delete(s.ids, id)
	return true, nil
}

// All returns a copy of the collection in insertion order.
func (s *Store) All() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// MaxID returns the largest identifier in the collection, 0 when empty.
func (s *Store) MaxID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var maxID int64
	for _, tx := range s.txs {
		if tx.ID > maxID {
			maxID = tx.ID
		}
	}
	return maxID
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txs)
}

func (s *Store) snapshot() []core.Transaction {
	out := make([]core.Transaction, len(s.txs))
	copy(out, s.txs)
	return out
}

// persist must be called with s.mu held.
func (s *Store) persist(ctx context.Context, txs []core.Transaction) error {
	data, err := s.codec.Encode(txs)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if s.quarantine != nil {
		backup := s.key + CorruptSuffix
		if err := s.blobs.Put(ctx, backup, s.quarantine); err != nil {
			return fmt.Errorf("back up undecodable ledger: %w", err)
		}
		s.logger.WarnContext(ctx, "Kept undecodable ledger blob aside", log.FieldKey, backup)
		s.quarantine = nil
	}
	if err := s.blobs.Put(ctx, s.key, data); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist ledger",
			log.NewFields().WithOperation(log.OpPersist).WithError(err).ToSlice()...)
		return fmt.Errorf("persist ledger: %w", err)
	}
	s.logger.DebugContext(ctx, "Ledger persisted", log.FieldKey, s.key, log.FieldCount, len(txs))
	return nil
}
