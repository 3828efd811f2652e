package trash

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tidy-go/internal/tidy"
)

// FileSystemTrash is the filesystem holding area used instead of permanent
// deletion. Every relocation gets its own directory keyed by a fresh ID, so
// same-named files never collide with existing trash contents.
//
// Directory structure:
//
//	<root>/
//	  files/
//	    <entry_id>/
//	      <basename>    (the relocated file or directory)
type FileSystemTrash struct {
	root     string
	filesDir string
	idgen    tidy.IDGenerator
}

// NewFileSystemTrash creates a trash rooted at the given path, creating the
// directory structure if needed.
func NewFileSystemTrash(root string, idgen tidy.IDGenerator) (*FileSystemTrash, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving trash root: %w", err)
	}

	filesDir := filepath.Join(absRoot, "files")
	if err := os.MkdirAll(filesDir, 0755); err != nil {
		return nil, fmt.Errorf("creating trash directory: %w", err)
	}

	return &FileSystemTrash{
		root:     absRoot,
		filesDir: filesDir,
		idgen:    idgen,
	}, nil
}

// Put relocates source into a fresh per-entry directory and returns the
// resulting trash path.
func (t *FileSystemTrash) Put(source string) (string, error) {
	entryDir := filepath.Join(t.filesDir, t.idgen.New())
	if err := os.MkdirAll(entryDir, 0755); err != nil {
		return "", fmt.Errorf("creating trash entry directory: %w", err)
	}

	trashPath := filepath.Join(entryDir, filepath.Base(source))
	if err := tidy.MovePath(source, trashPath); err != nil {
		os.Remove(entryDir)
		return "", fmt.Errorf("relocating to trash: %w", err)
	}
	return trashPath, nil
}

// Restore moves a trashed entry back to dest. An existing dest is an error;
// restore never overwrites.
func (t *FileSystemTrash) Restore(trashPath, dest string) error {
	if !t.Contains(trashPath) {
		return fmt.Errorf("not a trash entry: %s", trashPath)
	}
	if _, err := os.Lstat(dest); err == nil {
		return fmt.Errorf("destination already exists: %s", dest)
	}
	if err := tidy.MovePath(trashPath, dest); err != nil {
		return fmt.Errorf("restoring from trash: %w", err)
	}

	// Best effort cleanup of the now-empty entry directory.
	os.Remove(filepath.Dir(trashPath))
	return nil
}

// Contains reports whether trashPath lies inside this trash and still exists.
// The path is cleaned first so ".." segments cannot smuggle an outside path
// past the prefix check.
func (t *FileSystemTrash) Contains(trashPath string) bool {
	cleaned := filepath.Clean(trashPath)
	if !strings.HasPrefix(cleaned, t.filesDir+string(filepath.Separator)) {
		return false
	}
	_, err := os.Lstat(cleaned)
	return err == nil
}

// Root returns the trash root directory.
func (t *FileSystemTrash) Root() string {
	return t.root
}

// Compile-time check that FileSystemTrash implements tidy.Trash
var _ tidy.Trash = (*FileSystemTrash)(nil)
