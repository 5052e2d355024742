package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path, including parent directories, holding size bytes.
// Sizes below one are raised to one so the file is never empty.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()
	if size < 1 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{'v'}, int(size)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteFiles writes each name in sizes under dir with WriteFile.
func WriteFiles(t testing.TB, dir string, sizes map[string]int64) {
	t.Helper()
	for name, size := range sizes {
		WriteFile(t, filepath.Join(dir, name), size)
	}
}
