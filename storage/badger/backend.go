package badger

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/coursematch/storage"
)

// Backend wraps a BadgerDB instance and provides low-level operations.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// BackendOption configures a Backend.
type BackendOption func(*Backend)

// WithLogger sets the logger used by the backend and by badger itself.
func WithLogger(logger *slog.Logger) BackendOption {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenBackend opens a BadgerDB database at the specified path.
// Creates the directory if it doesn't exist.
func OpenBackend(filePath string, inMemory bool, opts ...BackendOption) (*Backend, error) {
	backend := &Backend{logger: slog.Default()}
	for _, opt := range opts {
		opt(backend)
	}
	backend.logger = backend.logger.With("component", "badger")

	var dbOpts badger.Options
	if inMemory {
		dbOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		// Ensure directory exists
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		dbOpts = badger.DefaultOptions(filePath)
	}

	dbOpts.Logger = &badgerLoggerAdapter{logger: backend.logger}
	dbOpts.Compression = options.None

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}
	backend.db = db
	return backend, nil
}

// Close closes the BadgerDB database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed returns true if the database is closed.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx executes a function within a BadgerDB transaction.
// If isWrite is true, creates a read-write transaction; fn is responsible
// for calling Commit. The transaction is always discarded afterwards.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	if b.db.IsClosed() {
		return storage.ErrStorageClosed
	}
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return translateError(fn(tx))
}

// translateError maps badger errors onto storage sentinels.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrConflict):
		return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
	case errors.Is(err, badger.ErrTxnTooBig):
		return fmt.Errorf("%w: %w", storage.ErrSpaceTooLarge, err)
	case errors.Is(err, badger.ErrDBClosed):
		return fmt.Errorf("%w: %w", storage.ErrStorageClosed, err)
	default:
		return err
	}
}
