package atomicfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	err := WriteFile(path, []byte(`{"a":1}`), 0o600)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestWriteFile_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	require.NoError(t, WriteFile(path, []byte("old"), 0o600))
	require.NoError(t, WriteFile(path, []byte("new"), 0o600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestWriteFile_NoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	require.NoError(t, WriteFile(path, []byte("content"), 0o600))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.json", entries[0].Name())
}

func TestWriteFile_MissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "state.json")

	err := WriteFile(path, []byte("content"), 0o600)
	assert.Error(t, err)
}
