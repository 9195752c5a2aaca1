package badger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/coursematch/core"
	"github.com/poiesic/coursematch/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSpace(codes ...string) *core.PersistedSpace {
	rows := make([]core.SparseRow, len(codes))
	for i := range codes {
		rows[i] = core.SparseRow{Indices: []int{i}, Values: []float64{1}}
	}
	terms := make([]string, len(codes))
	weights := make([]float64, len(codes))
	for i, code := range codes {
		terms[i] = "term" + code
		weights[i] = 1.5
	}
	return &core.PersistedSpace{
		Fingerprint: core.Fingerprint{Count: len(codes), Hash: "hash"},
		Config:      core.DefaultBuildConfig(),
		Documents:   len(codes),
		Terms:       terms,
		Weights:     weights,
		Codes:       codes,
		Rows:        rows,
		BuiltAt:     time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newTestRepo(t *testing.T) *SpaceRepository {
	t.Helper()
	repo, err := NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestLoadSpace_Empty(t *testing.T) {
	repo := newTestRepo(t)

	space, err := repo.LoadSpace(context.Background())
	require.NoError(t, err)
	assert.Nil(t, space)
}

func TestSaveAndLoadSpace(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	saved := testSpace("CSE114", "CSE214", "CSE353")
	require.NoError(t, repo.SaveSpace(ctx, saved))

	loaded, err := repo.LoadSpace(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, saved, loaded)
}

func TestSaveSpace_ReplacesPreviousGeneration(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSpace(ctx, testSpace("A", "B", "C")))
	require.NoError(t, repo.SaveSpace(ctx, testSpace("X")))

	loaded, err := repo.LoadSpace(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, loaded.Codes)
	assert.Len(t, loaded.Rows, 1)

	// Only the current generation remains on disk.
	var keys int
	err = repo.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(generationPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys++
		}
		return nil
	}, false)
	require.NoError(t, err)
	assert.Equal(t, 2, keys) // header + one row
}

func TestSaveSpace_EmptyCorpus(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	empty := &core.PersistedSpace{
		Fingerprint: core.Fingerprint{Count: 0, Hash: "hash"},
		Config:      core.DefaultBuildConfig(),
		BuiltAt:     time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.SaveSpace(ctx, empty))

	loaded, err := repo.LoadSpace(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Empty(t, loaded.Codes)
	assert.Empty(t, loaded.Rows)
	assert.Equal(t, empty.Fingerprint, loaded.Fingerprint)
}

func TestSaveSpace_RejectsMisalignedRows(t *testing.T) {
	repo := newTestRepo(t)

	space := testSpace("A", "B")
	space.Rows = space.Rows[:1]

	err := repo.SaveSpace(context.Background(), space)
	assert.ErrorIs(t, err, storage.ErrSerializationFailed)
}

func TestLoadSpace_MissingRow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSpace(ctx, testSpace("A", "B", "C")))

	err := repo.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeRowKey(1, 1)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	require.NoError(t, err)

	_, err = repo.LoadSpace(ctx)
	assert.ErrorIs(t, err, storage.ErrTruncatedData)
}

func TestLoadSpace_CorruptHeader(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSpace(ctx, testSpace("A")))

	err := repo.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeHeaderKey(1), []byte{0xff}); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	require.NoError(t, err)

	_, err = repo.LoadSpace(ctx)
	assert.ErrorIs(t, err, storage.ErrSerializationFailed)
}

func TestDeleteSpace(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSpace(ctx, testSpace("A", "B")))
	require.NoError(t, repo.DeleteSpace(ctx))

	loaded, err := repo.LoadSpace(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Deleting again is a no-op.
	require.NoError(t, repo.DeleteSpace(ctx))
}

func TestSpaceRepository_CanceledContext(t *testing.T) {
	repo := newTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, repo.SaveSpace(ctx, testSpace("A")), context.Canceled)
	_, err := repo.LoadSpace(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, repo.DeleteSpace(ctx), context.Canceled)
}

func TestSpaceRepository_ConcurrentReadersSeeWholeGenerations(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	small := testSpace("A")
	large := testSpace("A", "B", "C", "D")
	require.NoError(t, repo.SaveSpace(ctx, small))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			space := small
			if i%2 == 0 {
				space = large
			}
			for {
				err := repo.SaveSpace(ctx, space)
				if err == nil {
					break
				}
				if !assert.ErrorIs(t, err, storage.ErrTransactionFailed) {
					return
				}
			}
		}
	}()

	for i := 0; i < 50; i++ {
		loaded, err := repo.LoadSpace(ctx)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Len(t, loaded.Rows, len(loaded.Codes))
		assert.Equal(t, loaded.Fingerprint.Count, len(loaded.Codes))
	}
	wg.Wait()
}

func TestSpaceRepository_CloseOwnedBackend(t *testing.T) {
	repo, err := NewMemoryRepository()
	require.NoError(t, err)

	require.NoError(t, repo.Close())
	assert.True(t, repo.backend.IsClosed())
	require.NoError(t, repo.Close())

	_, err = repo.LoadSpace(context.Background())
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestSpaceRepository_SharedBackendStaysOpen(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	repo := NewSpaceRepository(backend)
	require.NoError(t, repo.Close())
	assert.False(t, backend.IsClosed())
}

func TestNewRepository_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo, err := NewRepository(dir)
	require.NoError(t, err)
	require.NoError(t, repo.SaveSpace(ctx, testSpace("CSE214", "CSE353")))
	require.NoError(t, repo.Close())

	reopened, err := NewRepository(dir)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.LoadSpace(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, []string{"CSE214", "CSE353"}, loaded.Codes)
}
