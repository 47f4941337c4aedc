// Package clipboard adapts the host clipboard: it reads a screenshot file
// reference (or raw image bytes) and copies a translated image back.
package clipboard

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	atotto "github.com/atotto/clipboard"
	design "golang.design/x/clipboard"

	"github.com/noll-to/noll/internal/cleanup"
	"github.com/noll-to/noll/internal/files"
	"github.com/noll-to/noll/internal/logger"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// Stubbed in tests.
var (
	readText   = atotto.ReadAll
	writeText  = atotto.WriteAll
	initImage  = sync.OnceValue(design.Init)
	readImage  = func() []byte { return design.Read(design.FmtImage) }
	writeImage = func(data []byte) { design.Write(design.FmtImage, data) }
)

// System is the production clipboard adapter.
type System struct {
	// TempDir receives spilled clipboard images. Empty means os.TempDir().
	TempDir string
	Now     func() time.Time
}

// ReadFileRef returns the first file:// reference on the clipboard. When the
// clipboard holds image bytes instead, they are written to a temporary PNG
// that is removed at exit, and its file:// URL is returned. An empty string
// means nothing usable was found.
func (s *System) ReadFileRef(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, err := readText()
	if err != nil {
		logger.Debug("Text clipboard unavailable", "error", err)
	}
	if ref := firstFileRef(text); ref != "" {
		return ref, nil
	}

	if err := initImage(); err != nil {
		logger.Debug("Image clipboard unavailable", "error", err)
		return "", nil
	}
	data := readImage()
	if len(data) == 0 {
		return "", nil
	}
	path, err := files.WriteTempImage(s.TempDir, "noll-clipboard", ".png", data, s.now())
	if err != nil {
		return "", fmt.Errorf("failed to store clipboard image: %w", err)
	}
	logger.Debug("Spilled clipboard image", "path", path, "bytes", len(data))
	cleanup.Register("clipboard image", func() error {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	})
	return FileURL(path), nil
}

// CopyFile places the image at path on the clipboard. PNG data goes to the
// image clipboard when one is available; anything else is copied as a
// file:// reference.
func (s *System) CopyFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	if bytes.HasPrefix(data, pngSignature) {
		err := initImage()
		if err == nil {
			writeImage(data)
			return nil
		}
		logger.Debug("Image clipboard unavailable, copying file reference", "error", err)
	}
	if err := writeText(FileURL(path)); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}

func (s *System) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// FileURL renders an absolute local path as a file:// URL.
func FileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

// firstFileRef scans text (a single reference or a text/uri-list) for the
// first file:// line.
func firstFileRef(text string) string {
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), "file://") {
			return line
		}
	}
	return ""
}
