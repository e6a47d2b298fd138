// Package blob stores product images and hands back their public URL.
package blob

import (
	"context"
	"errors"
	"fmt"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrNotAnImage = errors.New("file is not a supported image")

// Store is the image hosting collaborator.
type Store interface {
	Put(ctx context.Context, r io.Reader) (string, error)
}

// LocalStore normalizes uploads to JPEG under a directory that the HTTP
// server exposes at BaseURL.
type LocalStore struct {
	Dir      string
	BaseURL  string
	MaxWidth int
}

func NewLocalStore(dir, baseURL string, maxWidth int) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/"), MaxWidth: maxWidth}, nil
}

func (s *LocalStore) Put(ctx context.Context, r io.Reader) (string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if s.MaxWidth > 0 && img.Bounds().Dx() > s.MaxWidth {
		img = imaging.Resize(img, s.MaxWidth, 0, imaging.Lanczos)
	}

	name := uuid.NewString() + ".jpg"
	if err := imaging.Save(img, filepath.Join(s.Dir, name), imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return s.BaseURL + "/" + name, nil
}
