// Package storage is the storefront's file abstraction.
//
// Two drivers exist: "local" (a directory on this machine) and "s3" (any
// S3-compatible bucket: AWS, MinIO, R2). The shopper session can be kept on
// either, and admin content media (images referenced by content sections) is
// uploaded to the configured media disk.
//
//	disk, err := storage.Open("local")
//	err = disk.Put(ctx, "session/token", []byte(tok))
//	url := disk.URL("media/hero.jpg")
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when path does not exist.
var ErrNotFound = errors.New("storage: file not found")

// Disk is implemented by every storage driver.
type Disk interface {
	// Put writes content to path, creating parent directories as needed.
	Put(ctx context.Context, path string, content []byte) error

	// Get returns the content at path, or an error wrapping ErrNotFound.
	Get(ctx context.Context, path string) ([]byte, error)

	// Exists reports whether a file exists at path.
	Exists(ctx context.Context, path string) bool

	// Delete removes a file. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for path.
	URL(path string) string
}
