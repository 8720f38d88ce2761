package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/statement-import/internal/logging"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
}

func TestScanPaths_Directory(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.csv"))
	touch(t, filepath.Join(dir, "a.ofx"))
	touch(t, filepath.Join(dir, "a.report.csv"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "2024", "março.QFX"))

	files, err := NewStatementScanner(logging.NewMockLogger()).ScanPaths([]string{dir})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "2024", "março.QFX"),
		filepath.Join(dir, "a.ofx"),
		filepath.Join(dir, "b.csv"),
	}, files)
}

func TestScanPaths_FilesKeptInOrder(t *testing.T) {
	dir := t.TempDir()
	export := filepath.Join(dir, "export")
	csv := filepath.Join(dir, "z.csv")
	touch(t, export)
	touch(t, csv)

	files, err := NewStatementScanner(nil).ScanPaths([]string{csv, export})
	require.NoError(t, err)
	assert.Equal(t, []string{csv, export}, files)
}

func TestScanPaths_MissingPath(t *testing.T) {
	mock := logging.NewMockLogger()
	_, err := NewStatementScanner(mock).ScanPaths([]string{filepath.Join(t.TempDir(), "missing")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to stat path")
	assert.True(t, mock.HasEntry("ERROR", "Failed to stat path"))
}
