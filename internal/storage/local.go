package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes images under a media root served at baseURL.
type LocalStore struct {
	root    string
	baseURL string
}

func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(ImagePrefix)), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &LocalStore{root: root, baseURL: baseURL}, nil
}

func (l *LocalStore) Root() string {
	return l.root
}

func (l *LocalStore) SaveImage(_ context.Context, img *Image) (*UploadResult, error) {
	if img == nil || len(img.Data) == 0 {
		return nil, fmt.Errorf("empty image")
	}

	key := newImageKey(img.Filename)
	dst := filepath.Join(l.root, filepath.FromSlash(key))

	if err := os.WriteFile(dst, img.Data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}

	return &UploadResult{Key: key, URL: l.URL(key), Size: int64(len(img.Data))}, nil
}

func (l *LocalStore) DeleteImage(_ context.Context, key string) error {
	if key == "" || strings.Contains(key, "..") {
		return fmt.Errorf("invalid image key %q", key)
	}
	err := os.Remove(filepath.Join(l.root, filepath.FromSlash(key)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (l *LocalStore) URL(key string) string {
	return joinURL(l.baseURL, key)
}
