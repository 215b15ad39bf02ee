// Package fsutil provides filesystem helpers for reading idea input
// files and preparing the output directory tree.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ReadFileScoped reads a file with access confined to its parent
// directory via os.OpenRoot, so an idea-file path taken from the command
// line cannot traverse outside the directory it names.
func ReadFileScoped(path string) ([]byte, error) {
	cleaned := filepath.Clean(path)
	base := filepath.Base(cleaned)
	if base == "" || base == "." || base == string(filepath.Separator) {
		return nil, fmt.Errorf("path %q has no file component", path)
	}

	root, err := os.OpenRoot(filepath.Dir(cleaned))
	if err != nil {
		return nil, err
	}
	defer root.Close()

	file, err := root.Open(base)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}

// EnsureDir creates dir and any missing parents. Checkpoint and report
// writers call it before their first write.
func EnsureDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("directory path cannot be empty")
	}
	return os.MkdirAll(dir, 0o750)
}
