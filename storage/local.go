// Package storage keeps uploaded images. The catalog only sees the returned
// path string, so the backend can be swapped without touching it.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageStore saves and removes image files addressed by a relative path.
type ImageStore interface {
	Save(ctx context.Context, ext string, r io.Reader) (string, error)
	Delete(path string) error
	Exists(path string) bool
}

var allowedExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// ErrUnsupportedType is returned for extensions outside the image whitelist
var ErrUnsupportedType = errors.New("unsupported image type")

// LocalStore writes files under a root directory with generated names.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{root: root}, nil
}

// Save copies r into a new file and returns its path relative to the root.
func (s *LocalStore) Save(ctx context.Context, ext string, r io.Reader) (string, error) {
	ext = strings.ToLower(ext)
	if !allowedExt[ext] {
		return "", ErrUnsupportedType
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.NewString() + ext
	f, err := os.Create(filepath.Join(s.root, name))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close image file: %w", err)
	}
	return name, nil
}

// Delete removes path. Missing files are not an error.
func (s *LocalStore) Delete(path string) error {
	if path == "" {
		return nil
	}
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete image file: %w", err)
	}
	return nil
}

func (s *LocalStore) Exists(path string) bool {
	full, err := s.resolve(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// resolve keeps paths inside root
func (s *LocalStore) resolve(path string) (string, error) {
	clean := filepath.Clean(path)
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid image path %q", path)
	}
	return filepath.Join(s.root, clean), nil
}

// Root is the directory served under /uploads
func (s *LocalStore) Root() string { return s.root }
