package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sk88studiosinc-maker/Soulsound/internal/model"
)

type LocalStore struct {
	Dir     string
	BaseURL string
	// PreserveNames keeps caller-supplied file names, used for downloads.
	PreserveNames bool
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating media directory: %w", err)
	}
	return &LocalStore{Dir: dir, BaseURL: baseURL}, nil
}

func (s *LocalStore) Put(ctx context.Context, name, mimeType string, r io.Reader) (model.MediaRef, error) {
	if err := ctx.Err(); err != nil {
		return model.MediaRef{}, err
	}
	key, err := objectKey(name, s.PreserveNames)
	if err != nil {
		return model.MediaRef{}, err
	}

	tmp, err := os.CreateTemp(s.Dir, ".upload-*")
	if err != nil {
		return model.MediaRef{}, fmt.Errorf("creating temp file: %w", err)
	}
	n, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(tmp.Name())
		if copyErr != nil {
			return model.MediaRef{}, fmt.Errorf("writing media: %w", copyErr)
		}
		return model.MediaRef{}, fmt.Errorf("writing media: %w", closeErr)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.Dir, key)); err != nil {
		os.Remove(tmp.Name())
		return model.MediaRef{}, fmt.Errorf("persisting media: %w", err)
	}

	return model.MediaRef{
		Key:       key,
		URL:       joinURL(s.BaseURL, key),
		MimeType:  mimeFor(key, mimeType),
		SizeBytes: n,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (s *LocalStore) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	if err := checkKey(key); err != nil {
		return nil, "", err
	}
	f, err := os.Open(filepath.Join(s.Dir, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	return f, mimeFor(key, ""), nil
}

// Path returns the on-disk location of key.
func (s *LocalStore) Path(key string) string {
	return filepath.Join(s.Dir, key)
}
