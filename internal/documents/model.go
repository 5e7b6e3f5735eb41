package documents

import (
	"time"

	"docbase-backend/internal/tags"
)

// Document is an uploaded file plus its extracted, searchable representation.
//
// Indexed reports whether extraction completed; when true, both ContentText
// and SearchText are non-nil (possibly empty). Until then both stay nil.
type Document struct {
	ID               string
	Title            string
	Description      string
	StorageKey       string
	OriginalFilename string
	ContentType      string
	SizeBytes        int64
	ContentText      *string
	SearchText       *string
	Indexed          bool
	AuthorID         string
	Tags             []tags.Tag
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Filter is a conjunctive structured query; zero-valued fields impose no
// constraint.
type Filter struct {
	Title       string
	ContentType string
	StartDate   *time.Time
	EndDate     *time.Time
	AuthorID    string
}

// Page is one page of documents plus total-count metadata.
type Page struct {
	Items      []Document
	TotalCount int64
	Page       int
	Size       int
}

// TotalPages derives the page count from the total and page size.
func (p Page) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.TotalCount + int64(p.Size) - 1) / int64(p.Size))
}
