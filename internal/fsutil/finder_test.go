package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.hcl", "a.hcl", "sub/c.hcl", "notes.txt", "sub/d.hcl.bak"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o600))
	}
	single := filepath.Join(dir, "notes.txt")

	files, err := FindFiles([]string{dir, single, filepath.Join(dir, "a.hcl")}, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.hcl"),
		filepath.Join(dir, "b.hcl"),
		filepath.Join(dir, "sub", "c.hcl"),
		single,
	}, files)
}

func TestFindFiles_Errors(t *testing.T) {
	_, err := FindFiles([]string{t.TempDir()}, "")
	assert.ErrorContains(t, err, "extension must not be empty")

	_, err = FindFiles([]string{filepath.Join(t.TempDir(), "missing")}, ".hcl")
	assert.ErrorContains(t, err, "error accessing path")
}
