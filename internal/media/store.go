package media

import (
	"context"
	"errors"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/sk88studiosinc-maker/Soulsound/internal/model"
)

var (
	ErrNotFound   = errors.New("media not found")
	ErrInvalidKey = errors.New("invalid media key")
)

// Store materialises generated or recorded media so it can be referenced by
// URL. Handlers and sessions depend on this interface only; main picks the
// backend.
type Store interface {
	Put(ctx context.Context, name, mimeType string, r io.Reader) (model.MediaRef, error)
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
}

// objectKey returns a collision-free key that keeps the extension of name.
// With preserve set the base name is used as-is.
func objectKey(name string, preserve bool) (string, error) {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if preserve {
		if err := checkKey(base); err != nil {
			return "", err
		}
		return base, nil
	}
	return uuid.NewString() + strings.ToLower(filepath.Ext(base)), nil
}

func checkKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, "/\\") || strings.HasPrefix(key, ".") {
		return ErrInvalidKey
	}
	return nil
}

func mimeFor(key, given string) string {
	if given != "" {
		return given
	}
	switch strings.ToLower(filepath.Ext(key)) {
	case ".webm":
		return "video/webm"
	case ".mp4":
		return "video/mp4"
	case ".wav":
		return "audio/wav"
	}
	if t := mime.TypeByExtension(filepath.Ext(key)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func joinURL(base, key string) string {
	if base == "" {
		return key
	}
	return strings.TrimRight(base, "/") + "/" + key
}

// ExtensionFor picks a file extension for a MIME type the services return.
func ExtensionFor(mimeType string) string {
	switch strings.ToLower(strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])) {
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	}
	return ".bin"
}
