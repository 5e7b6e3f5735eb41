package object

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound indicates the storage key does not resolve to stored bytes.
var ErrNotFound = errors.New("object not found")

// ObjectStore defines the contract for saving and retrieving binary objects.
// Stored names are generated server-side; callers only pass a suggested
// extension recovered from the original filename.
type ObjectStore interface {
	Save(ctx context.Context, suggestedExt string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}
