package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_SaveExistsDelete(t *testing.T) {
	store, err := NewLocalStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	path, err := store.Save(context.Background(), ".PNG", strings.NewReader("fake-png"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".png"))
	assert.True(t, store.Exists(path))

	data, err := os.ReadFile(filepath.Join(store.Root(), path))
	require.NoError(t, err)
	assert.Equal(t, "fake-png", string(data))

	require.NoError(t, store.Delete(path))
	assert.False(t, store.Exists(path))

	// deleting twice is fine
	assert.NoError(t, store.Delete(path))
}

func TestLocalStore_RejectsUnsupportedType(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(context.Background(), ".exe", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestLocalStore_RejectsEscapingPaths(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Delete("../etc/passwd"))
	assert.False(t, store.Exists("/etc/passwd"))
}
