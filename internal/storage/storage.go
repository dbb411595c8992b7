// Package storage keeps uploaded post images on local disk or in S3.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ImagePrefix is the key prefix every post image is stored under.
const ImagePrefix = "posts/"

// Image is a validated upload ready to persist.
type Image struct {
	Data        []byte
	Filename    string
	ContentType string
}

// UploadResult describes a stored image
type UploadResult struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// ImageStore persists post images and resolves their public URLs.
type ImageStore interface {
	SaveImage(ctx context.Context, img *Image) (*UploadResult, error)
	DeleteImage(ctx context.Context, key string) error
	URL(key string) string
}

// newImageKey builds posts/<uuid><ext>, keeping the original extension.
func newImageKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	return ImagePrefix + uuid.NewString() + ext
}

func joinURL(base, key string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(base, "/"), strings.TrimPrefix(key, "/"))
}

func getContentTypeForImage(extension string) string {
	switch strings.ToLower(extension) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
