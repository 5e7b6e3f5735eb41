package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"docbase-backend/internal/extract"
	"docbase-backend/internal/shared/cache"
	"docbase-backend/internal/shared/storage/object"
	"docbase-backend/internal/shared/telemetry"
	"docbase-backend/internal/shared/util"
	"docbase-backend/internal/tags"
	"docbase-backend/internal/users"
)

const maxTitleLength = 255

// Dispatcher schedules fire-and-forget background work. The upload path
// never waits on it; completion is observable only through the record store.
type Dispatcher interface {
	Submit(fn func())
}

// Service owns the document lifecycle (upload, extraction, update, delete)
// and serves all query paths. Only ProcessContent mutates text fields and
// the indexed flag.
type Service struct {
	Repo     Repo
	Store    object.ObjectStore
	Users    users.Repo
	Tags     *tags.Resolver
	Cache    *cache.Cache[Document]
	Dispatch Dispatcher
}

// UploadInput carries the validated upload request payload.
type UploadInput struct {
	Title            string
	Description      string
	TagNames         []string
	ContentType      string
	OriginalFilename string
	AuthorID         string
}

// Upload stores the file bytes, persists a not-yet-indexed document record
// and schedules extraction. It returns as soon as the record is persisted;
// there is no ordering guarantee between the response and extraction.
func (s *Service) Upload(ctx context.Context, in UploadInput, file io.Reader) (Document, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Document{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len(title) > maxTitleLength {
		return Document{}, fmt.Errorf("%w: title exceeds %d characters", ErrInvalidInput, maxTitleLength)
	}

	author, err := s.Users.GetByID(ctx, in.AuthorID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return Document{}, fmt.Errorf("%w: %s", ErrAuthorNotFound, in.AuthorID)
		}
		return Document{}, err
	}

	// Tags resolve before any bytes land in the blob store, so a resolver
	// failure leaves nothing behind to clean up.
	resolved, err := s.Tags.ResolveAll(ctx, in.TagNames)
	if err != nil {
		return Document{}, err
	}

	storageKey, size, detectedType, err := s.Store.Save(ctx, util.FileExtension(in.OriginalFilename), file)
	if err != nil {
		return Document{}, fmt.Errorf("%w: save upload: %v", ErrStorage, err)
	}

	contentType := strings.TrimSpace(in.ContentType)
	if contentType == "" {
		contentType = detectedType
	}

	now := time.Now().UTC()
	doc := Document{
		ID:               uuid.NewString(),
		Title:            title,
		Description:      strings.TrimSpace(in.Description),
		StorageKey:       storageKey,
		OriginalFilename: in.OriginalFilename,
		ContentType:      contentType,
		SizeBytes:        size,
		Indexed:          false,
		AuthorID:         author.ID,
		Tags:             resolved,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		// Best-effort cleanup; an orphaned blob is repairable, an orphaned
		// record is not.
		if delErr := s.Store.Delete(ctx, storageKey); delErr != nil && !errors.Is(delErr, object.ErrNotFound) {
			telemetry.Warn("document.upload_cleanup_failed", map[string]any{
				"storage_key": storageKey,
				"error":       delErr.Error(),
			})
		}
		return Document{}, err
	}

	docID := doc.ID
	s.Dispatch.Submit(func() {
		s.ProcessContent(context.Background(), docID)
	})

	return doc, nil
}

// ProcessContent extracts text for a stored document and flips its indexed
// flag. It runs on a background worker and must never take the scheduler
// down: every failure is logged and leaves the document unindexed with no
// partial writes. Re-running after success re-derives the same fields, so
// the operation is idempotent over unchanged bytes.
func (s *Service) ProcessContent(ctx context.Context, id string) {
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		telemetry.Error("document.process_load_failed", map[string]any{
			"document_id": id,
			"error":       err.Error(),
		})
		return
	}

	body, err := s.Store.Open(ctx, doc.StorageKey)
	if err != nil {
		telemetry.Error("document.process_open_failed", map[string]any{
			"document_id": id,
			"storage_key": doc.StorageKey,
			"error":       err.Error(),
		})
		return
	}
	raw, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		telemetry.Error("document.process_read_failed", map[string]any{
			"document_id": id,
			"error":       err.Error(),
		})
		return
	}

	text, err := extract.Text(raw, doc.ContentType, doc.OriginalFilename)
	if err != nil {
		telemetry.Error("document.extract_failed", map[string]any{
			"document_id":  id,
			"content_type": doc.ContentType,
			"error":        err.Error(),
		})
		return
	}

	searchText := extract.Normalize(doc.Title + " " + doc.Description + " " + text)
	doc.ContentText = &text
	doc.SearchText = &searchText
	doc.Indexed = true
	doc.UpdatedAt = time.Now().UTC()

	s.evict(id)
	if err := s.Repo.Update(ctx, doc); err != nil {
		telemetry.Error("document.process_persist_failed", map[string]any{
			"document_id": id,
			"error":       err.Error(),
		})
		return
	}

	telemetry.Info("document.processed", map[string]any{
		"document_id": id,
		"text_bytes":  len(text),
	})
}

// GetByID returns a document, served from cache when possible.
func (s *Service) GetByID(ctx context.Context, id string) (Document, error) {
	if s.Cache != nil {
		if doc, ok := s.Cache.Get(id); ok {
			return doc, nil
		}
	}
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Document{}, err
	}
	if s.Cache != nil {
		s.Cache.Put(id, doc)
	}
	return doc, nil
}

// UpdateMetadata replaces title and description. Tags are replaced only when
// the request names at least one tag; an empty collection keeps the current
// set rather than clearing it.
func (s *Service) UpdateMetadata(ctx context.Context, id, title, description string, tagNames []string) (Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Document{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len(title) > maxTitleLength {
		return Document{}, fmt.Errorf("%w: title exceeds %d characters", ErrInvalidInput, maxTitleLength)
	}

	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Document{}, err
	}

	doc.Title = title
	doc.Description = strings.TrimSpace(description)

	resolved, err := s.Tags.ResolveAll(ctx, tagNames)
	if err != nil {
		return Document{}, err
	}
	if len(resolved) > 0 {
		doc.Tags = resolved
	}
	doc.UpdatedAt = time.Now().UTC()

	s.evict(id)
	if err := s.Repo.Update(ctx, doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Delete removes the stored bytes, then the record. A blob store I/O failure
// aborts before the record is touched so no record is left referencing
// nothing by mistake; bytes already gone are treated as the repairable case
// and the delete proceeds.
func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Store.Delete(ctx, doc.StorageKey); err != nil {
		if !errors.Is(err, object.ErrNotFound) {
			return fmt.Errorf("%w: delete blob %s: %v", ErrStorage, doc.StorageKey, err)
		}
		telemetry.Warn("document.blob_already_missing", map[string]any{
			"document_id": id,
			"storage_key": doc.StorageKey,
		})
	}

	s.evict(id)
	return s.Repo.Delete(ctx, id)
}

// List returns a stable page over all documents.
func (s *Service) List(ctx context.Context, page, size int, sort Sort) (Page, error) {
	return s.Repo.List(ctx, page, size, sort)
}

// ListByAuthor resolves a username to an identity and pages that author's
// documents.
func (s *Service) ListByAuthor(ctx context.Context, username string, page, size int, sort Sort) (Page, error) {
	author, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return Page{}, fmt.Errorf("%w: %s", ErrAuthorNotFound, username)
		}
		return Page{}, err
	}
	return s.Repo.ListByAuthor(ctx, author.ID, page, size, sort)
}

// Search applies a conjunctive structured filter.
func (s *Service) Search(ctx context.Context, filter Filter, page, size int, sort Sort) (Page, error) {
	return s.Repo.Search(ctx, filter, page, size, sort)
}

// SearchKeyword does a case-insensitive substring match over title,
// description and extracted content.
func (s *Service) SearchKeyword(ctx context.Context, keyword string, page, size int, sort Sort) (Page, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return Page{}, fmt.Errorf("%w: keyword is required", ErrInvalidInput)
	}
	return s.Repo.SearchKeyword(ctx, keyword, page, size, sort)
}

// ListUnprocessed returns every document still awaiting extraction. Used by
// the backfill path to re-drive extraction.
func (s *Service) ListUnprocessed(ctx context.Context) ([]Document, error) {
	return s.Repo.ListUnindexed(ctx)
}

func (s *Service) evict(id string) {
	if s.Cache != nil {
		s.Cache.Evict(id)
	}
}
