package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/coursematch/core"
	"github.com/poiesic/coursematch/storage"
)

// SpaceRepository implements storage.SpaceRepository for BadgerDB.
//
// Every save writes a fresh generation of keys and repoints the manifest at it
// in the same transaction, then drops the previous generation.
type SpaceRepository struct {
	backend *Backend
	logger  *slog.Logger
	owned   bool
}

var _ storage.SpaceRepository = (*SpaceRepository)(nil)

// NewSpaceRepository creates a SpaceRepository on an existing backend.
// Closing the repository leaves the backend open.
func NewSpaceRepository(backend *Backend) *SpaceRepository {
	return &SpaceRepository{
		backend: backend,
		logger:  backend.logger,
	}
}

// NewRepository opens a BadgerDB database at path and returns a repository
// that owns it.
func NewRepository(path string, opts ...BackendOption) (storage.SpaceRepository, error) {
	backend, err := OpenBackend(path, false, opts...)
	if err != nil {
		return nil, err
	}
	repo := NewSpaceRepository(backend)
	repo.owned = true
	return repo, nil
}

// Close closes the backend if the repository owns it.
func (r *SpaceRepository) Close() error {
	if !r.owned || r.backend.IsClosed() {
		return nil
	}
	return r.backend.Close()
}

// SaveSpace replaces the stored vector space.
func (r *SpaceRepository) SaveSpace(ctx context.Context, space *core.PersistedSpace) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if space == nil {
		return fmt.Errorf("%w: nil space", storage.ErrSerializationFailed)
	}
	if len(space.Rows) != len(space.Codes) {
		return fmt.Errorf("%w: %d rows for %d codes", storage.ErrSerializationFailed, len(space.Rows), len(space.Codes))
	}

	var gen uint64
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prev, found, err := readManifest(tx)
		if err != nil {
			return err
		}
		gen = prev + 1

		header := storage.MarshalSpaceHeader(storage.HeaderOf(space))
		if err := tx.Set(makeHeaderKey(gen), header); err != nil {
			return err
		}
		for i, row := range space.Rows {
			if err := tx.Set(makeRowKey(gen, i), storage.MarshalSparseRow(row)); err != nil {
				return err
			}
		}
		if err := tx.Set([]byte(manifestKey), storage.MarshalGeneration(gen)); err != nil {
			return err
		}
		if found {
			if err := deletePrefix(tx, makeGenerationPrefix(prev)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	r.logger.Debug("saved vector space",
		"generation", gen,
		"courses", len(space.Codes),
		"terms", len(space.Terms))
	return nil
}

// LoadSpace retrieves the stored vector space.
// Returns nil, nil if no space has been saved.
func (r *SpaceRepository) LoadSpace(ctx context.Context) (*core.PersistedSpace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var space *core.PersistedSpace
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		gen, found, err := readManifest(tx)
		if err != nil || !found {
			return err
		}

		item, err := tx.Get(makeHeaderKey(gen))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: generation %d has no header", storage.ErrTruncatedData, gen)
			}
			return err
		}
		var header storage.SpaceHeader
		err = item.Value(func(val []byte) error {
			var unmarshalErr error
			header, unmarshalErr = storage.UnmarshalSpaceHeader(val)
			return unmarshalErr
		})
		if err != nil {
			return err
		}

		rows, err := readRows(ctx, tx, gen, len(header.Codes))
		if err != nil {
			return err
		}
		space = header.Space(rows)
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return space, nil
}

// DeleteSpace removes the stored vector space and every generation key.
func (r *SpaceRepository) DeleteSpace(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete([]byte(manifestKey)); err != nil {
			return err
		}
		if err := deletePrefix(tx, []byte(generationPrefix)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

func readManifest(tx *badger.Txn) (uint64, bool, error) {
	item, err := tx.Get([]byte(manifestKey))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	var gen uint64
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		gen, unmarshalErr = storage.UnmarshalGeneration(val)
		return unmarshalErr
	})
	if err != nil {
		return 0, false, err
	}
	return gen, true, nil
}

func readRows(ctx context.Context, tx *badger.Txn, gen uint64, count int) ([]core.SparseRow, error) {
	rows := make([]core.SparseRow, 0, count)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = makeRowPrefix(gen)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item := iter.Item()
		index, ok := rowIndex(item.Key(), gen)
		if !ok || index != len(rows) {
			return nil, fmt.Errorf("%w: generation %d row %d out of sequence", storage.ErrTruncatedData, gen, len(rows))
		}
		var row core.SparseRow
		err := item.Value(func(val []byte) error {
			var unmarshalErr error
			row, unmarshalErr = storage.UnmarshalSparseRow(val)
			return unmarshalErr
		})
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	if len(rows) != count {
		return nil, fmt.Errorf("%w: generation %d has %d rows, want %d", storage.ErrTruncatedData, gen, len(rows), count)
	}
	return rows, nil
}

// deletePrefix deletes every key under prefix within tx.
func deletePrefix(tx *badger.Txn, prefix []byte) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)

	var keys [][]byte
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	iter.Close()

	for _, key := range keys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
