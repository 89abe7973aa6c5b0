// Package storage stores uploaded files (menu item images) on a named disk:
//
//   - "local": a directory served by the HTTP server under /storage
//   - "s3": any S3-compatible bucket (AWS, MinIO, R2)
//
//	disk, err := storage.Open(storage.FromConfig())
//	err = disk.Put(ctx, "foods/abc.jpg", body, "image/jpeg")
//	url := disk.URL("foods/abc.jpg")
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/resor-app/resor/config"
)

// ErrNotExist is returned by Get for missing files.
var ErrNotExist = errors.New("storage: file does not exist")

type Disk interface {
	Put(ctx context.Context, path string, r io.Reader, contentType string) error
	// Get opens path for reading. The caller closes the reader.
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Exists(ctx context.Context, path string) (bool, error)
	// Delete removes path. Missing files are not an error.
	Delete(ctx context.Context, path string) error
	// URL returns the public URL of path.
	URL(path string) string
}

// Config selects and configures a disk.
type Config struct {
	Driver    string
	LocalRoot string
	LocalURL  string

	S3Bucket   string
	S3Region   string
	S3Key      string
	S3Secret   string
	S3Endpoint string
	S3URL      string
}

// FromConfig reads STORAGE_* and S3_* settings.
func FromConfig() Config {
	return Config{
		Driver:     config.StorageDefault(),
		LocalRoot:  config.StorageLocalRoot(),
		LocalURL:   config.StorageURL(),
		S3Bucket:   config.StorageS3Bucket(),
		S3Region:   config.StorageS3Region(),
		S3Key:      config.StorageS3Key(),
		S3Secret:   config.StorageS3Secret(),
		S3Endpoint: config.StorageS3Endpoint(),
		S3URL:      config.StorageS3URL(),
	}
}

// Open builds the disk named by cfg.Driver.
func Open(cfg Config) (Disk, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.LocalRoot, cfg.LocalURL)
	case "s3":
		return NewS3(context.Background(), cfg)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q (supported: local, s3)", cfg.Driver)
	}
}
