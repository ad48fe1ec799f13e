package checksum

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "docs/readme.md", "# readme\n")
	writeFile(t, root, "image.png", "binary")

	s := NewScanner(root, WithExtensions([]string{".go", ".md"}))
	sums, err := s.Scan(context.Background())
	require.NoError(t, err)

	require.Len(t, sums, 2)
	assert.Contains(t, sums, "main.go")
	assert.Contains(t, sums, "docs/readme.md")
	assert.NotContains(t, sums, "image.png")

	want := sha256.Sum256([]byte("package main\n"))
	assert.Equal(t, hex.EncodeToString(want[:]), sums["main.go"])
}

func TestScan_ExcludesDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, ".git/config.go", "not really go\n")
	writeFile(t, root, "vendor/dep.go", "package dep\n")
	writeFile(t, root, "node_modules/mod.go", "x\n")

	s := NewScanner(root, WithExtensions([]string{".go"}))
	sums, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"main.go"}, keysOf(sums))
}

func TestScan_Deterministic(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.go", "b.go", "c.go"} {
		writeFile(t, root, name, name+" content\n")
	}

	s := NewScanner(root, WithConcurrency(2))
	first, err := s.Scan(context.Background())
	require.NoError(t, err)
	second, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestScan_EmptyTree(t *testing.T) {
	s := NewScanner(t.TempDir())
	sums, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sums)
}

func TestScan_CanceledContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "x\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewScanner(root).Scan(ctx)
	assert.Error(t, err)
}

func keysOf(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
