package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ExtForMime maps an image MIME type to a file extension.
func ExtForMime(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	default:
		return ".png"
	}
}

// WriteTempImage stores data as <dir>/<prefix>-<unix-ms><ext> and returns the
// path. dir defaults to the OS temp directory. The file is created
// exclusively; on a name clash a UUID is appended.
func WriteTempImage(dir, prefix, ext string, data []byte, now time.Time) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	name := fmt.Sprintf("%s-%d%s", prefix, now.UnixMilli(), ext)
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, os.ErrExist) {
		path = filepath.Join(dir, fmt.Sprintf("%s-%d-%s%s", prefix, now.UnixMilli(), uuid.NewString()[:8], ext))
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create temp image: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write temp image: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close temp image: %w", err)
	}
	return path, nil
}
