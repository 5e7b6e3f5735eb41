package tags

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("tag not found")
	// ErrConflict indicates another writer created the same name first.
	ErrConflict = errors.New("tag name already exists")
)

// Repo defines persistence operations for tags.
type Repo interface {
	GetByName(ctx context.Context, name string) (Tag, error)
	Create(ctx context.Context, tag Tag) error
}
