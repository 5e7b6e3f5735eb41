package documents

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Document)}
}

func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.ID] = doc
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

func (r *MemoryRepo) Update(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[doc.ID]; !ok {
		return ErrNotFound
	}
	r.data[doc.ID] = doc
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, page, size int, s Sort) (Page, error) {
	return r.paged(ctx, page, size, s, func(Document) bool { return true })
}

func (r *MemoryRepo) ListByAuthor(ctx context.Context, authorID string, page, size int, s Sort) (Page, error) {
	return r.paged(ctx, page, size, s, func(d Document) bool { return d.AuthorID == authorID })
}

func (r *MemoryRepo) Search(ctx context.Context, filter Filter, page, size int, s Sort) (Page, error) {
	return r.paged(ctx, page, size, s, func(d Document) bool { return matchesFilter(d, filter) })
}

func (r *MemoryRepo) SearchKeyword(ctx context.Context, keyword string, page, size int, s Sort) (Page, error) {
	kw := strings.ToLower(keyword)
	return r.paged(ctx, page, size, s, func(d Document) bool { return matchesKeyword(d, kw) })
}

func (r *MemoryRepo) ListUnindexed(ctx context.Context) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Document
	for _, doc := range r.data {
		if !doc.Indexed {
			out = append(out, doc)
		}
	}
	sortDocs(out, Sort{Field: SortCreatedAt})
	return out, nil
}

func (r *MemoryRepo) paged(ctx context.Context, page, size int, s Sort, keep func(Document) bool) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 10
	}

	r.mu.RLock()
	matched := make([]Document, 0, len(r.data))
	for _, doc := range r.data {
		if keep(doc) {
			matched = append(matched, doc)
		}
	}
	r.mu.RUnlock()

	sortDocs(matched, s)

	total := int64(len(matched))
	start := page * size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}

	items := make([]Document, end-start)
	copy(items, matched[start:end])
	return Page{Items: items, TotalCount: total, Page: page, Size: size}, nil
}

func sortDocs(docs []Document, s Sort) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i], docs[j]
		if s.Desc {
			a, b = b, a
		}
		switch s.Field {
		case SortTitle:
			return a.Title < b.Title
		case SortFileSize:
			return a.SizeBytes < b.SizeBytes
		case SortUpdatedAt:
			return a.UpdatedAt.Before(b.UpdatedAt)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})
}

func matchesFilter(d Document, f Filter) bool {
	if f.Title != "" && !strings.Contains(strings.ToLower(d.Title), strings.ToLower(f.Title)) {
		return false
	}
	if f.ContentType != "" && d.ContentType != f.ContentType {
		return false
	}
	if f.StartDate != nil && d.CreatedAt.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && d.CreatedAt.After(*f.EndDate) {
		return false
	}
	if f.AuthorID != "" && d.AuthorID != f.AuthorID {
		return false
	}
	return true
}

// matchesKeyword checks title, description and extracted content. A document
// without extracted text can only match on title or description.
func matchesKeyword(d Document, loweredKeyword string) bool {
	if loweredKeyword == "" {
		return false
	}
	if strings.Contains(strings.ToLower(d.Title), loweredKeyword) {
		return true
	}
	if strings.Contains(strings.ToLower(d.Description), loweredKeyword) {
		return true
	}
	if d.ContentText != nil && strings.Contains(strings.ToLower(*d.ContentText), loweredKeyword) {
		return true
	}
	return false
}

var _ Repo = (*MemoryRepo)(nil)
