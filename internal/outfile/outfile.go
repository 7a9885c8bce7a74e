// Package outfile writes build artifacts without exposing partial writes to
// readers or to a concurrent build targeting the same file.
package outfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const (
	lockSuffix  = ".lock"
	tempPattern = ".incoming.*"
)

// Write replaces path with data. It holds an exclusive lock on
// path+".lock" for the duration and goes through a temporary file in the
// same directory followed by a rename.
func Write(path string, data []byte) error {
	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%q: failed to create directory: %w", dir, err)
	}

	lock := flock.New(path + lockSuffix)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("%q: failed to acquire lock: %w", lock.Path(), err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) error {
	temp, err := os.CreateTemp(filepath.Dir(path), tempPattern)
	if err != nil {
		return fmt.Errorf("%q: failed to create temporary file: %w", path, err)
	}
	tempPath := temp.Name()

	needCleanup := true
	defer func() {
		if needCleanup {
			_ = temp.Close()
			_ = os.Remove(tempPath)
		}
	}()

	if _, err := temp.Write(data); err != nil {
		return fmt.Errorf("%q: failed to write temporary file: %w", tempPath, err)
	}
	if err := temp.Sync(); err != nil {
		return fmt.Errorf("%q: failed to sync temporary file: %w", tempPath, err)
	}
	if err := temp.Chmod(0o644); err != nil {
		return fmt.Errorf("%q: failed to set permissions: %w", tempPath, err)
	}
	if err := temp.Close(); err != nil {
		return fmt.Errorf("%q: failed to close temporary file: %w", tempPath, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		needCleanup = false
		return fmt.Errorf("%q: failed to rename temporary file to final name: %w", path, err)
	}

	needCleanup = false
	return nil
}
