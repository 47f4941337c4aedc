package files

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/noll-to/noll/internal/logger"
)

// AtomicWrite writes data to a temp file in the destination directory and
// renames it into place.
func AtomicWrite(path string, data []byte, perms os.FileMode) error {
	if err := RejectSymlinkPath(path); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".noll-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	cleanup := true
	defer func() {
		if cleanup {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := tmpFile.Chmod(perms); err != nil {
		return fmt.Errorf("failed to set temp file permissions: %w", err)
	}
	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := renameAtomic(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to destination: %w", err)
	}
	if runtime.GOOS != "windows" {
		if err := syncDir(dir); err != nil {
			logger.Debug("Directory fsync failed", "path", dir, "error", err)
		}
	}

	cleanup = false
	return nil
}

// SaveImage writes a translated image to path. Unless overwrite is set an
// existing file is kept and a free sibling name is used instead; the path
// actually written is returned.
func SaveImage(path string, data []byte, overwrite bool) (string, error) {
	target := path
	if !overwrite {
		free, changed, err := SafePath(path)
		if err != nil {
			return "", err
		}
		if changed {
			logger.Info("Output exists, writing to a new file", "requested", path, "path", free)
		}
		target = free
	}
	if err := AtomicWrite(target, data, 0644); err != nil {
		return "", err
	}
	return target, nil
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
