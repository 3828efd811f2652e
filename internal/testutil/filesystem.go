package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates a file with the given content, creating parent
// directories as needed.
func WriteFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating parent directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// ReadFile returns a file's content, failing the test on error.
func ReadFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return data
}

// Exists reports whether any entry exists at path.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
