package photostore

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNotFound is returned when a photo key does not resolve to a stored photo.
	ErrNotFound = errors.New("photo not found")
	// ErrPermissionDenied is returned when the device refuses access to photo storage.
	ErrPermissionDenied = errors.New("permission denied")
)

// PhotoStore holds captured photos on the device until a form submission
// uploads them. Keys are opaque and safe to embed in form payloads.
type PhotoStore interface {
	Save(ctx context.Context, r io.Reader) (key string, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
