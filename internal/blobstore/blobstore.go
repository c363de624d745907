package blobstore

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("blob not found")

// Object storage for uploaded files
type Store interface {
	// Save object under the key and return URL it is publicly reachable by
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)

	// Delete object. Missing object is not an error
	Delete(ctx context.Context, key string) error

	// Read object content and its content type. ErrNotFound if missing
	Get(ctx context.Context, key string) ([]byte, string, error)
}
