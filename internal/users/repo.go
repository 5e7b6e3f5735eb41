package users

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("user not found")

// Repo defines persistence operations for author identities.
type Repo interface {
	Upsert(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
}
