// Package storage persists recipe images on the local filesystem or in S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/foodgram/backend/config"
	"github.com/google/uuid"
)

// ImagePrefix is the key prefix every recipe image is stored under.
const ImagePrefix = "recipes/images"

// ErrNotFound is returned when deleting a key that does not exist.
var ErrNotFound = errors.New("image not found")

// ImageStore saves and removes recipe images addressed by key.
type ImageStore interface {
	// Save stores data under a fresh key with the given extension and returns the key.
	Save(ctx context.Context, ext string, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
	// URL returns the public address of key.
	URL(key string) string
}

// New builds the store selected by cfg.MediaBackend.
func New(ctx context.Context, cfg *config.Config) (ImageStore, error) {
	switch cfg.MediaBackend {
	case "s3":
		s3Cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3: %w", err)
		}
		return NewS3Store(s3Cfg), nil
	case "filesystem":
		return NewFilesystemStore(cfg.MediaDir, cfg.MediaBaseURL)
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.MediaBackend)
	}
}

// NewKey returns a unique image key with extension ext.
func NewKey(ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = "bin"
	}
	return path.Join(ImagePrefix, uuid.NewString()+"."+ext)
}

// validKey rejects keys that escape the image prefix.
func validKey(key string) bool {
	clean := path.Clean(key)
	return clean == key && strings.HasPrefix(clean, ImagePrefix+"/") && !strings.Contains(clean, "..")
}
