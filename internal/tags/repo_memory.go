package tags

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu     sync.RWMutex
	byName map[string]Tag
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byName: make(map[string]Tag)}
}

func (r *MemoryRepo) GetByName(ctx context.Context, name string) (Tag, error) {
	if err := ctx.Err(); err != nil {
		return Tag{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	tag, ok := r.byName[name]
	if !ok {
		return Tag{}, ErrNotFound
	}
	return tag, nil
}

func (r *MemoryRepo) Create(ctx context.Context, tag Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[tag.Name]; ok {
		return ErrConflict
	}
	r.byName[tag.Name] = tag
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
