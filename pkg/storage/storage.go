// Package storage defines the FileStore interface used as the destination
// and source of archives. Local keeps files under a directory; S3Store keeps
// them as objects in an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
)

// FileStore is a minimal interface for file-oriented storage.
//
// Paths are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type FileStore interface {
	// Read opens the named file for reading.
	// If the file does not exist, an error wrapping os.ErrNotExist is returned.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write opens the named file for writing. The content becomes visible
	// only after Close returns nil.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Delete removes the named file. Missing files are not an error.
	Delete(ctx context.Context, path string) error

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, path string) (bool, error)
}

// Options configures OpenURL.
type Options struct {
	// Region is the S3 region. Empty defers to the shared AWS config
	// ($AWS_REGION, the active profile), then "us-east-1".
	Region string

	// Endpoint overrides the S3 endpoint for S3-compatible stores (MinIO,
	// R2). Path-style addressing is used when set.
	Endpoint string

	// UploadBuffer is the capacity of the channel feeding each S3 upload.
	// Zero means DefaultUploadBuffer.
	UploadBuffer int

	// Logger receives upload diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// OpenURL opens the store named by raw:
//
//	s3://bucket/optional/prefix   S3Store
//	file:///var/archives          Local
//	./archives                    Local
func OpenURL(ctx context.Context, raw string, opts Options) (FileStore, error) {
	if raw == "" {
		return nil, fmt.Errorf("storage: empty store URL")
	}
	if !strings.Contains(raw, "://") {
		return NewLocal(raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("storage: parse %q: %w", raw, err)
	}
	switch u.Scheme {
	case "file":
		return NewLocal(u.Path)
	case "s3":
		if u.Host == "" {
			return nil, fmt.Errorf("storage: %q: missing bucket", raw)
		}
		client, err := newS3Client(ctx, opts)
		if err != nil {
			return nil, err
		}
		store := NewS3(client, u.Host, strings.Trim(u.Path, "/"))
		store.uploadBuffer = opts.UploadBuffer
		if opts.Logger != nil {
			store.logger = opts.Logger
		}
		return store, nil
	default:
		return nil, fmt.Errorf("storage: unsupported scheme %q", u.Scheme)
	}
}
