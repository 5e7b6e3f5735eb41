package tags

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Resolver maps freeform tag names to canonical tag records, creating new
// ones lazily on first reference.
type Resolver struct {
	Repo Repo
}

func NewResolver(repo Repo) *Resolver {
	return &Resolver{Repo: repo}
}

// Resolve returns the tag for name, creating it if absent. Two concurrent
// callers introducing the same name race on the unique constraint; the loser
// re-fetches the row the winner created.
func (r *Resolver) Resolve(ctx context.Context, name string) (Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Tag{}, errors.New("tag name is required")
	}

	tag, err := r.Repo.GetByName(ctx, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Tag{}, fmt.Errorf("lookup tag %q: %w", name, err)
	}

	tag = Tag{ID: uuid.NewString(), Name: name}
	createErr := r.Repo.Create(ctx, tag)
	if createErr == nil {
		return tag, nil
	}
	if errors.Is(createErr, ErrConflict) {
		return r.Repo.GetByName(ctx, name)
	}
	return Tag{}, fmt.Errorf("create tag %q: %w", name, createErr)
}

// ResolveAll resolves a set of names, dropping blanks and duplicates while
// preserving first-seen order.
func (r *Resolver) ResolveAll(ctx context.Context, names []string) ([]Tag, error) {
	seen := make(map[string]struct{}, len(names))
	out := make([]Tag, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		tag, err := r.Resolve(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, tag)
	}
	return out, nil
}
