package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONAtomic_CreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.json")

	require.NoError(t, WriteJSONAtomic(path, map[string]int{"n": 1}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"n\": 1")
}

func TestReadJSON_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	in := map[string]string{"a.go": "abc"}
	require.NoError(t, WriteJSONAtomic(path, in))

	var out map[string]string
	require.NoError(t, ReadJSON(path, &out))
	assert.Equal(t, in, out)
}

func TestReadJSON_MissingFile(t *testing.T) {
	var out map[string]string
	err := ReadJSON(filepath.Join(t.TempDir(), "nope.json"), &out)
	assert.True(t, os.IsNotExist(err))
}

func TestAtomicWriteFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, AtomicWriteFile(path, []byte("old"), 0o644))
	require.NoError(t, AtomicWriteFile(path, []byte("new"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}
