package documents

import (
	"time"

	"docbase-backend/internal/extract"
)

const summaryMaxLength = 200

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	DocumentID       string    `json:"documentId"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	OriginalFilename string    `json:"originalFilename"`
	ContentType      string    `json:"contentType"`
	SizeBytes        int64     `json:"sizeBytes"`
	Indexed          bool      `json:"indexed"`
	Summary          string    `json:"summary,omitempty"`
	Tags             []string  `json:"tags"`
	AuthorID         string    `json:"authorId"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// PageResponse wraps a page of documents with paging metadata.
type PageResponse struct {
	Items      []DocumentResponse `json:"items"`
	Page       int                `json:"page"`
	Size       int                `json:"size"`
	TotalCount int64              `json:"totalCount"`
	TotalPages int                `json:"totalPages"`
}

// NewResponse maps a document to its outward representation.
func NewResponse(doc Document) DocumentResponse {
	tagNames := make([]string, 0, len(doc.Tags))
	for _, tag := range doc.Tags {
		tagNames = append(tagNames, tag.Name)
	}

	summary := ""
	if doc.ContentText != nil {
		summary = extract.Summarize(*doc.ContentText, summaryMaxLength)
	}

	return DocumentResponse{
		DocumentID:       doc.ID,
		Title:            doc.Title,
		Description:      doc.Description,
		OriginalFilename: doc.OriginalFilename,
		ContentType:      doc.ContentType,
		SizeBytes:        doc.SizeBytes,
		Indexed:          doc.Indexed,
		Summary:          summary,
		Tags:             tagNames,
		AuthorID:         doc.AuthorID,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
}

// NewPageResponse maps a page of documents to its outward representation.
func NewPageResponse(page Page) PageResponse {
	items := make([]DocumentResponse, 0, len(page.Items))
	for _, doc := range page.Items {
		items = append(items, NewResponse(doc))
	}
	return PageResponse{
		Items:      items,
		Page:       page.Page,
		Size:       page.Size,
		TotalCount: page.TotalCount,
		TotalPages: page.TotalPages(),
	}
}
