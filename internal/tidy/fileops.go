package tidy

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

// MovePath moves a file or directory to dest. It tries a rename first and
// falls back to copy-then-remove only for cross-device renames; any other
// rename failure (permissions, missing parent) is returned as is.
// The destination parent must already exist; the destination itself must not.
func MovePath(source, dest string) error {
	err := os.Rename(source, dest)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return err
	}

	if err := CopyPath(source, dest); err != nil {
		return err
	}
	if err := os.RemoveAll(source); err != nil {
		return fmt.Errorf("removing source after copy: %w", err)
	}
	return nil
}

// CopyPath copies a file or directory tree to dest, preserving permissions.
// The destination must not exist.
func CopyPath(source, dest string) error {
	info, err := os.Lstat(source)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		return copySymlink(source, dest)
	case info.IsDir():
		return copyDir(source, dest, info.Mode().Perm())
	default:
		return copyFile(source, dest, info.Mode().Perm())
	}
}

func copyFile(source, dest string, perm fs.FileMode) error {
	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return fmt.Errorf("copying data: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return fmt.Errorf("closing destination: %w", err)
	}
	return nil
}

func copyDir(source, dest string, perm fs.FileMode) error {
	if err := os.Mkdir(dest, perm); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}

	entries, err := os.ReadDir(source)
	if err != nil {
		return fmt.Errorf("reading source directory: %w", err)
	}
	for _, entry := range entries {
		src := filepath.Join(source, entry.Name())
		dst := filepath.Join(dest, entry.Name())
		if err := CopyPath(src, dst); err != nil {
			return err
		}
	}
	return nil
}

func copySymlink(source, dest string) error {
	target, err := os.Readlink(source)
	if err != nil {
		return fmt.Errorf("reading symlink: %w", err)
	}
	if err := os.Symlink(target, dest); err != nil {
		return fmt.Errorf("creating symlink: %w", err)
	}
	return nil
}

// pathExists reports whether any entry (file, directory or dangling symlink)
// exists at path.
func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
