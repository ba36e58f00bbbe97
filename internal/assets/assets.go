// Package assets stores uploaded images referenced by email components.
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/mailcraft/internal/apperr"
)

// MaxSize is the largest accepted image.
const MaxSize = 10 << 20 // 10 MB

// URLPrefix is where the HTTP server exposes stored images.
const URLPrefix = "/assets/"

var (
	// ErrUnsupported is returned for extensions or content that are not images.
	ErrUnsupported = errors.New("unsupported image")

	// ErrTooLarge is returned for images above MaxSize.
	ErrTooLarge = errors.New("image too large")

	allowedExtensions = map[string]bool{
		".png": true, ".jpg": true, ".jpeg": true,
		".gif": true, ".webp": true, ".svg": true,
	}

	mimeToExt = map[string]string{
		"image/png":     ".png",
		"image/jpeg":    ".jpg",
		"image/gif":     ".gif",
		"image/webp":    ".webp",
		"image/svg+xml": ".svg",
	}

	safeFilenameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
)

// Asset describes a stored image.
type Asset struct {
	Name string `json:"filename"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// Dir is a flat directory of images.
type Dir struct {
	root string
}

// NewDir opens root, creating it when missing.
func NewDir(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("assets: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("assets: create dir: %w", err)
	}
	return &Dir{root: abs}, nil
}

// Root returns the absolute asset directory.
func (d *Dir) Root() string {
	return d.root
}

// Path validates that name is a plain file name (no separators, no
// traversal) and returns its absolute path.
func (d *Dir) Path(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	abs := filepath.Join(d.root, cleaned)
	if !strings.HasPrefix(abs, d.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("path escapes asset directory")
	}
	return abs, nil
}

// Save stores data under name. The extension must be an image type and the
// content must match it. Existing files are never replaced.
func (d *Dir) Save(name string, data []byte) (Asset, error) {
	if len(data) > MaxSize {
		return Asset{}, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, len(data), MaxSize)
	}
	abs, err := d.Path(name)
	if err != nil {
		return Asset{}, err
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return Asset{}, fmt.Errorf("%w: extension %q (allowed: png, jpg, jpeg, gif, webp, svg)", ErrUnsupported, ext)
	}
	if err := validateMagicBytes(data, ext); err != nil {
		return Asset{}, err
	}

	f, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return Asset{}, fmt.Errorf("asset %s: %w", name, apperr.ErrAlreadyExists)
		}
		return Asset{}, fmt.Errorf("assets: create: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(abs)
		return Asset{}, fmt.Errorf("assets: write: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(abs)
		return Asset{}, fmt.Errorf("assets: close: %w", err)
	}
	return Asset{Name: name, Size: int64(len(data)), URL: URLPrefix + name}, nil
}

// ExtForMIME maps an image media type to its canonical extension.
func ExtForMIME(mime string) string {
	return mimeToExt[strings.TrimSpace(strings.Split(mime, ";")[0])]
}

// SanitizeName strips path separators and unsafe characters. An empty
// result is replaced with a random name.
func SanitizeName(name string) string {
	name = filepath.Base(name)
	name = safeFilenameRe.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == "_" {
		name = uuid.NewString()
	}
	return name
}

// validateMagicBytes verifies content matches the declared extension.
func validateMagicBytes(data []byte, ext string) error {
	if ext == ".svg" {
		prefix := data
		if len(prefix) > 1024 {
			prefix = prefix[:1024]
		}
		if !bytes.Contains(prefix, []byte("<svg")) {
			return fmt.Errorf("%w: content is not SVG", ErrUnsupported)
		}
		return nil
	}

	detected := http.DetectContentType(data)
	got := ExtForMIME(detected)
	want := ext
	if want == ".jpeg" {
		want = ".jpg"
	}
	if got != want {
		return fmt.Errorf("%w: content does not match extension %s (detected: %s)", ErrUnsupported, ext, detected)
	}
	return nil
}
