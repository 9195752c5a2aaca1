package badger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/coursematch/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "nested", "db")
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	info, err := os.Stat(tmpDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_PathIsFile(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(tmpFile, []byte("not a db"), 0644))

	backend, err := OpenBackend(tmpFile, false)
	require.Error(t, err)
	assert.Nil(t, backend)
	assert.Contains(t, err.Error(), "is not a directory")
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	assert.False(t, backend.IsClosed())
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())

	err = backend.WithTx(func(tx *badger.Txn) error { return nil }, false)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	assert.ErrorIs(t, translateError(badger.ErrConflict), storage.ErrTransactionFailed)
	assert.ErrorIs(t, translateError(badger.ErrConflict), badger.ErrConflict)
	assert.ErrorIs(t, translateError(badger.ErrTxnTooBig), storage.ErrSpaceTooLarge)
	assert.NotErrorIs(t, translateError(badger.ErrTxnTooBig), storage.ErrTransactionFailed)
	assert.ErrorIs(t, translateError(badger.ErrDBClosed), storage.ErrStorageClosed)
	assert.Equal(t, badger.ErrKeyNotFound, translateError(badger.ErrKeyNotFound))
}
