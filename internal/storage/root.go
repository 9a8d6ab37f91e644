package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/starford/docwarden/internal/apperr"
)

// FindRoot walks upward from start until it finds a directory that contains
// marker, and returns that directory.
func FindRoot(start, marker string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("storage: resolve start: %w", err)
	}
	for {
		info, err := os.Stat(filepath.Join(dir, marker))
		if err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: no %s directory above %s", apperr.ErrRootNotFound, marker, start)
		}
		dir = parent
	}
}

// Locate finds an existing file. Absolute paths are used as-is; relative ones
// are tried against each base directory in order.
func Locate(p string, bases ...string) (string, error) {
	return locate(p, false, bases)
}

// LocateAny is Locate for a file or a directory.
func LocateAny(p string, bases ...string) (string, error) {
	return locate(p, true, bases)
}

func locate(p string, dirs bool, bases []string) (string, error) {
	ok := func(candidate string) bool {
		info, err := os.Stat(candidate)
		return err == nil && (dirs || !info.IsDir())
	}
	if filepath.IsAbs(p) {
		if ok(p) {
			return filepath.Clean(p), nil
		}
		return "", fmt.Errorf("%w: %s", apperr.ErrNotFound, p)
	}
	for _, base := range bases {
		candidate := filepath.Join(base, filepath.FromSlash(p))
		if ok(candidate) {
			return filepath.Abs(candidate)
		}
	}
	return "", fmt.Errorf("%w: %s (searched %v)", apperr.ErrNotFound, p, bases)
}
