package controller

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ImageRef is a screenshot located through a clipboard file reference.
type ImageRef struct {
	Path     string
	Filename string
	MimeType string
}

// ParseImageRef decodes a file:// reference. A reference without an
// extension gets ".png" appended to its filename; the MIME type follows the
// extension and defaults to image/png.
func ParseImageRef(ref string) (ImageRef, error) {
	ref = strings.TrimSpace(ref)
	if len(ref) < len("file://") || !strings.EqualFold(ref[:len("file://")], "file://") {
		return ImageRef{}, fmt.Errorf("not a file reference: %q", ref)
	}

	var path string
	if u, err := url.Parse(ref); err == nil {
		// '#' and '?' in a file name arrive percent-encoded.
		if u.Fragment != "" || u.RawQuery != "" || u.ForceQuery {
			return ImageRef{}, fmt.Errorf("file reference has a query or fragment: %q", ref)
		}
		path = u.Path
		if u.Host != "" && !strings.EqualFold(u.Host, "localhost") {
			path = "//" + u.Host + path
		}
	} else {
		raw := ref[len("file://"):]
		if unescaped, err := url.PathUnescape(raw); err == nil {
			raw = unescaped
		}
		path = raw
	}
	// file:///C:/Users/... on Windows
	if len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	path = filepath.FromSlash(path)

	name := filepath.Base(path)
	if path == "" || name == "." || name == string(filepath.Separator) {
		return ImageRef{}, fmt.Errorf("file reference has no path: %q", ref)
	}

	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		name += ".png"
	}
	return ImageRef{Path: path, Filename: name, MimeType: mimeForExt(ext)}, nil
}

func mimeForExt(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "image/png"
	}
}
