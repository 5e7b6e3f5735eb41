package documents

import (
	"context"
	"fmt"
	"strings"
)

// SortField names a sortable document attribute, in API spelling.
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortUpdatedAt SortField = "updatedAt"
	SortTitle     SortField = "title"
	SortFileSize  SortField = "fileSize"
)

// Sort pairs a whitelisted field with a direction.
type Sort struct {
	Field SortField
	Desc  bool
}

// DefaultSort is newest-first.
var DefaultSort = Sort{Field: SortCreatedAt, Desc: true}

// ParseSort validates a client-supplied sort field and direction.
func ParseSort(field, direction string) (Sort, error) {
	if strings.TrimSpace(field) == "" {
		field = string(SortCreatedAt)
	}
	switch SortField(field) {
	case SortCreatedAt, SortUpdatedAt, SortTitle, SortFileSize:
	default:
		return Sort{}, fmt.Errorf("%w: %q", ErrInvalidSort, field)
	}
	desc := !strings.EqualFold(strings.TrimSpace(direction), "asc")
	return Sort{Field: SortField(field), Desc: desc}, nil
}

func (f SortField) column() string {
	switch f {
	case SortUpdatedAt:
		return "updated_at"
	case SortTitle:
		return "title"
	case SortFileSize:
		return "size_bytes"
	default:
		return "created_at"
	}
}

// Repo defines persistence operations for documents.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, id string) (Document, error)
	Update(ctx context.Context, doc Document) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page, size int, sort Sort) (Page, error)
	ListByAuthor(ctx context.Context, authorID string, page, size int, sort Sort) (Page, error)
	Search(ctx context.Context, filter Filter, page, size int, sort Sort) (Page, error)
	SearchKeyword(ctx context.Context, keyword string, page, size int, sort Sort) (Page, error)
	ListUnindexed(ctx context.Context) ([]Document, error)
}
