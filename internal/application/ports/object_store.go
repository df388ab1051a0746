package ports

import (
	"context"
	"io"
	"time"
)

type PutOptions struct {
	ContentType string
	// Overwrite replaces an existing object at the same path; when false the
	// put fails with file.ErrObjectExists.
	Overwrite bool
}

type ObjectStore interface {
	Put(ctx context.Context, path string, content io.Reader, size int64, opts PutOptions) error
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, path string) error
}
