// Package storage persists uploaded files (avatars, generated documents)
// behind a backend-neutral interface. Production uses S3; development and
// tests use the local filesystem.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/veritum/veritum-pro/pkg/config"
)

type Storage interface {
	Upload(ctx context.Context, fileID uuid.UUID, filename string, data io.Reader) (string, error)
	Download(ctx context.Context, storagePath string) (io.ReadCloser, error)
	Delete(ctx context.Context, storagePath string) error
}

// New builds the backend named in the configuration.
func New(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Backend {
	case "s3":
		return NewS3Storage(cfg)
	case "local", "":
		return NewLocalStorage(cfg.LocalPath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func storagePathFor(fileID uuid.UUID, filename string) string {
	return fmt.Sprintf("%s/%s%s", fileID.String()[:2], fileID, filepath.Ext(filename))
}

func contentTypeFor(filename string) string {
	switch filepath.Ext(filename) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
