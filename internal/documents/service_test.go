package documents

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"docbase-backend/internal/shared/cache"
	"docbase-backend/internal/shared/storage/object"
	"docbase-backend/internal/shared/storage/object/local"
	"docbase-backend/internal/tags"
	"docbase-backend/internal/users"
)

// syncDispatcher runs submitted tasks inline so tests observe extraction
// results deterministically.
type syncDispatcher struct{}

func (syncDispatcher) Submit(fn func()) { fn() }

// heldDispatcher collects tasks without running them, modeling the window
// between upload response and extraction.
type heldDispatcher struct {
	tasks []func()
}

func (d *heldDispatcher) Submit(fn func()) { d.tasks = append(d.tasks, fn) }

func (d *heldDispatcher) runAll() {
	for _, fn := range d.tasks {
		fn()
	}
	d.tasks = nil
}

type failingStore struct {
	object.ObjectStore
	deleteErr error
}

func (s failingStore) Delete(ctx context.Context, storageKey string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.ObjectStore.Delete(ctx, storageKey)
}

func newTestService(t *testing.T, dispatch Dispatcher) (*Service, *MemoryRepo, *users.MemoryRepo) {
	t.Helper()
	docRepo := NewMemoryRepo()
	userRepo := users.NewMemoryRepo()
	svc := &Service{
		Repo:     docRepo,
		Store:    local.New(t.TempDir()),
		Users:    userRepo,
		Tags:     tags.NewResolver(tags.NewMemoryRepo()),
		Dispatch: dispatch,
	}
	return svc, docRepo, userRepo
}

func seedAuthor(t *testing.T, repo *users.MemoryRepo, id string) {
	t.Helper()
	if err := repo.Upsert(context.Background(), users.User{ID: id, Username: "author-" + id}); err != nil {
		t.Fatalf("seed author: %v", err)
	}
}

func TestUploadThenProcess(t *testing.T) {
	held := &heldDispatcher{}
	svc, _, userRepo := newTestService(t, held)
	seedAuthor(t, userRepo, "u1")

	body := "Quarterly Budget. Revenue grew in every region this quarter."
	doc, err := svc.Upload(context.Background(), UploadInput{
		Title:            "Budget report",
		Description:      "finance",
		TagNames:         []string{"finance", "q3"},
		ContentType:      "text/plain",
		OriginalFilename: "budget.txt",
		AuthorID:         "u1",
	}, strings.NewReader(body))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if doc.Indexed {
		t.Fatal("document must not be indexed before extraction runs")
	}
	if doc.ContentText != nil || doc.SearchText != nil {
		t.Fatal("text fields must be unset before extraction runs")
	}
	if doc.SizeBytes != int64(len(body)) {
		t.Fatalf("size = %d, want %d", doc.SizeBytes, len(body))
	}
	if len(doc.Tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(doc.Tags))
	}

	held.runAll()

	got, err := svc.GetByID(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("get after processing: %v", err)
	}
	if !got.Indexed {
		t.Fatal("document should be indexed after extraction")
	}
	if got.ContentText == nil || *got.ContentText != body {
		t.Fatalf("content text not persisted: %v", got.ContentText)
	}
	if got.SearchText == nil {
		t.Fatal("search text not persisted")
	}
	if *got.SearchText != strings.ToLower(*got.SearchText) {
		t.Fatalf("search text must be lowercased: %q", *got.SearchText)
	}
	if !strings.Contains(*got.SearchText, "budget report") {
		t.Fatalf("search text must include the title: %q", *got.SearchText)
	}
	if !strings.Contains(*got.SearchText, "revenue grew") {
		t.Fatalf("search text must include extracted content: %q", *got.SearchText)
	}
}

func TestProcessContentIdempotent(t *testing.T) {
	svc, _, userRepo := newTestService(t, syncDispatcher{})
	seedAuthor(t, userRepo, "u1")

	doc, err := svc.Upload(context.Background(), UploadInput{
		Title:            "Notes",
		ContentType:      "text/plain",
		OriginalFilename: "notes.txt",
		AuthorID:         "u1",
	}, strings.NewReader("stable content"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	first, err := svc.GetByID(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	svc.ProcessContent(context.Background(), doc.ID)

	second, err := svc.GetByID(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("get after reprocess: %v", err)
	}
	if *first.ContentText != *second.ContentText || *first.SearchText != *second.SearchText {
		t.Fatal("reprocessing unchanged bytes must derive identical fields")
	}
	if !second.Indexed {
		t.Fatal("document must stay indexed")
	}
}

func TestProcessContentFailureLeavesUnindexed(t *testing.T) {
	held := &heldDispatcher{}
	svc, _, userRepo := newTestService(t, held)
	seedAuthor(t, userRepo, "u1")

	doc, err := svc.Upload(context.Background(), UploadInput{
		Title:            "Image",
		ContentType:      "image/png",
		OriginalFilename: "photo.png",
		AuthorID:         "u1",
	}, bytes.NewReader([]byte{0x89, 0x50, 0x4e, 0x47}))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	held.runAll()

	got, err := svc.GetByID(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Indexed {
		t.Fatal("unsupported payload must leave the document unindexed")
	}
	if got.ContentText != nil || got.SearchText != nil {
		t.Fatal("failed extraction must not write partial text fields")
	}
}

type brokenTagRepo struct {
	err error
}

func (r brokenTagRepo) GetByName(context.Context, string) (tags.Tag, error) { return tags.Tag{}, r.err }
func (r brokenTagRepo) Create(context.Context, tags.Tag) error              { return r.err }

func TestUploadTagFailureLeavesNoBlob(t *testing.T) {
	dir := t.TempDir()
	userRepo := users.NewMemoryRepo()
	svc := &Service{
		Repo:     NewMemoryRepo(),
		Store:    local.New(dir),
		Users:    userRepo,
		Tags:     tags.NewResolver(brokenTagRepo{err: errors.New("tag store down")}),
		Dispatch: syncDispatcher{},
	}
	seedAuthor(t, userRepo, "u1")

	_, err := svc.Upload(context.Background(), UploadInput{
		Title:            "Doc",
		TagNames:         []string{"finance"},
		ContentType:      "text/plain",
		OriginalFilename: "doc.txt",
		AuthorID:         "u1",
	}, strings.NewReader("body"))
	if err == nil {
		t.Fatal("expected tag resolution failure to fail the upload")
	}

	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatalf("read store dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("failed upload must not leave stored bytes behind, found %d entries", len(entries))
	}
}

func TestUploadRejectsMissingAuthor(t *testing.T) {
	svc, _, _ := newTestService(t, syncDispatcher{})

	_, err := svc.Upload(context.Background(), UploadInput{
		Title:            "Doc",
		ContentType:      "text/plain",
		OriginalFilename: "doc.txt",
		AuthorID:         "missing",
	}, strings.NewReader("body"))
	if !errors.Is(err, ErrAuthorNotFound) {
		t.Fatalf("expected ErrAuthorNotFound, got: %v", err)
	}
}

func TestUploadRejectsBlankTitle(t *testing.T) {
	svc, _, userRepo := newTestService(t, syncDispatcher{})
	seedAuthor(t, userRepo, "u1")

	_, err := svc.Upload(context.Background(), UploadInput{
		Title:            "   ",
		ContentType:      "text/plain",
		OriginalFilename: "doc.txt",
		AuthorID:         "u1",
	}, strings.NewReader("body"))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got: %v", err)
	}
}

func TestUpdateMetadataEmptyTagsKeepsExisting(t *testing.T) {
	svc, _, userRepo := newTestService(t, syncDispatcher{})
	seedAuthor(t, userRepo, "u1")

	doc, err := svc.Upload(context.Background(), UploadInput{
		Title:            "Tagged",
		TagNames:         []string{"alpha", "beta"},
		ContentType:      "text/plain",
		OriginalFilename: "doc.txt",
		AuthorID:         "u1",
	}, strings.NewReader("body"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	updated, err := svc.UpdateMetadata(context.Background(), doc.ID, "New title", "new desc", nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "New title" || updated.Description != "new desc" {
		t.Fatalf("metadata not replaced: %+v", updated)
	}
	if len(updated.Tags) != 2 {
		t.Fatalf("empty tag list must keep existing tags, got %d", len(updated.Tags))
	}

	replaced, err := svc.UpdateMetadata(context.Background(), doc.ID, "New title", "new desc", []string{"gamma"})
	if err != nil {
		t.Fatalf("update with tags: %v", err)
	}
	if len(replaced.Tags) != 1 || replaced.Tags[0].Name != "gamma" {
		t.Fatalf("non-empty tag list must replace tags, got %+v", replaced.Tags)
	}
}

func TestDeleteRemovesRecordAndBytes(t *testing.T) {
	svc, docRepo, userRepo := newTestService(t, syncDispatcher{})
	seedAuthor(t, userRepo, "u1")

	doc, err := svc.Upload(context.Background(), UploadInput{
		Title:            "Doomed",
		ContentType:      "text/plain",
		OriginalFilename: "doc.txt",
		AuthorID:         "u1",
	}, strings.NewReader("body"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := svc.Delete(context.Background(), doc.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := docRepo.GetByID(context.Background(), doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected record gone, got: %v", err)
	}
	if _, err := svc.Store.Open(context.Background(), doc.StorageKey); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected bytes gone, got: %v", err)
	}
}

func TestDeleteProceedsWhenBytesAlreadyGone(t *testing.T) {
	svc, docRepo, userRepo := newTestService(t, syncDispatcher{})
	seedAuthor(t, userRepo, "u1")

	doc, err := svc.Upload(context.Background(), UploadInput{
		Title:            "Orphaned",
		ContentType:      "text/plain",
		OriginalFilename: "doc.txt",
		AuthorID:         "u1",
	}, strings.NewReader("body"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := svc.Store.Delete(context.Background(), doc.StorageKey); err != nil {
		t.Fatalf("remove bytes out of band: %v", err)
	}
	if err := svc.Delete(context.Background(), doc.ID); err != nil {
		t.Fatalf("delete with missing bytes must proceed: %v", err)
	}
	if _, err := docRepo.GetByID(context.Background(), doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected record gone, got: %v", err)
	}
}

func TestDeleteAbortsOnStorageFailure(t *testing.T) {
	svc, docRepo, userRepo := newTestService(t, syncDispatcher{})
	seedAuthor(t, userRepo, "u1")

	doc, err := svc.Upload(context.Background(), UploadInput{
		Title:            "Stuck",
		ContentType:      "text/plain",
		OriginalFilename: "doc.txt",
		AuthorID:         "u1",
	}, strings.NewReader("body"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	svc.Store = failingStore{ObjectStore: svc.Store, deleteErr: errors.New("io failure")}

	if err := svc.Delete(context.Background(), doc.ID); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got: %v", err)
	}
	if _, err := docRepo.GetByID(context.Background(), doc.ID); err != nil {
		t.Fatalf("record must survive a failed blob delete: %v", err)
	}
}

func TestKeywordSearchGatedOnExtractedText(t *testing.T) {
	held := &heldDispatcher{}
	svc, _, userRepo := newTestService(t, held)
	seedAuthor(t, userRepo, "u1")

	doc, err := svc.Upload(context.Background(), UploadInput{
		Title:            "Plain title",
		Description:      "plain description",
		ContentType:      "text/plain",
		OriginalFilename: "doc.txt",
		AuthorID:         "u1",
	}, strings.NewReader("hidden payload keyword zebra"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	// Content is invisible to keyword search until extraction lands.
	page, err := svc.SearchKeyword(context.Background(), "zebra", 0, 10, DefaultSort)
	if err != nil {
		t.Fatalf("search before processing: %v", err)
	}
	if page.TotalCount != 0 {
		t.Fatalf("content must not match before extraction, got %d", page.TotalCount)
	}

	// Title and description stay searchable the whole time.
	page, err = svc.SearchKeyword(context.Background(), "plain title", 0, 10, DefaultSort)
	if err != nil {
		t.Fatalf("search title: %v", err)
	}
	if page.TotalCount != 1 {
		t.Fatalf("title must match before extraction, got %d", page.TotalCount)
	}

	held.runAll()

	page, err = svc.SearchKeyword(context.Background(), "zebra", 0, 10, DefaultSort)
	if err != nil {
		t.Fatalf("search after processing: %v", err)
	}
	if page.TotalCount != 1 || page.Items[0].ID != doc.ID {
		t.Fatalf("content must match after extraction, got %+v", page)
	}
}

func TestSearchKeywordRejectsBlank(t *testing.T) {
	svc, _, _ := newTestService(t, syncDispatcher{})
	if _, err := svc.SearchKeyword(context.Background(), "   ", 0, 10, DefaultSort); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got: %v", err)
	}
}

func TestListByAuthorUnknownUsername(t *testing.T) {
	svc, _, _ := newTestService(t, syncDispatcher{})
	if _, err := svc.ListByAuthor(context.Background(), "nobody", 0, 10, DefaultSort); !errors.Is(err, ErrAuthorNotFound) {
		t.Fatalf("expected ErrAuthorNotFound, got: %v", err)
	}
}

func TestGetByIDServesFromCacheAndEvictsOnUpdate(t *testing.T) {
	svc, docRepo, userRepo := newTestService(t, syncDispatcher{})
	seedAuthor(t, userRepo, "u1")

	docCache, err := cache.New[Document](128)
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}
	defer docCache.Close()
	svc.Cache = docCache

	doc, err := svc.Upload(context.Background(), UploadInput{
		Title:            "Cached",
		ContentType:      "text/plain",
		OriginalFilename: "doc.txt",
		AuthorID:         "u1",
	}, strings.NewReader("body"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if _, err := svc.GetByID(context.Background(), doc.ID); err != nil {
		t.Fatalf("first get: %v", err)
	}
	docCache.Wait()

	// A stale cache would miss this repo-level change; a fresh Get after the
	// eviction in UpdateMetadata must not.
	if _, err := svc.UpdateMetadata(context.Background(), doc.ID, "Renamed", "", nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	docCache.Wait()

	got, err := svc.GetByID(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Title != "Renamed" {
		t.Fatalf("cache served stale document: %q", got.Title)
	}

	stored, err := docRepo.GetByID(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("repo get: %v", err)
	}
	if stored.Title != "Renamed" {
		t.Fatalf("repo missing update: %q", stored.Title)
	}
}

func TestListUnprocessed(t *testing.T) {
	held := &heldDispatcher{}
	svc, _, userRepo := newTestService(t, held)
	seedAuthor(t, userRepo, "u1")

	first, err := svc.Upload(context.Background(), UploadInput{
		Title:            "First",
		ContentType:      "text/plain",
		OriginalFilename: "a.txt",
		AuthorID:         "u1",
	}, strings.NewReader("alpha"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	second, err := svc.Upload(context.Background(), UploadInput{
		Title:            "Second",
		ContentType:      "text/plain",
		OriginalFilename: "b.txt",
		AuthorID:         "u1",
	}, strings.NewReader("beta"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	docs, err := svc.ListUnprocessed(context.Background())
	if err != nil {
		t.Fatalf("list unprocessed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 unprocessed, got %d", len(docs))
	}
	if docs[0].ID != first.ID || docs[1].ID != second.ID {
		t.Fatalf("expected oldest first, got %s then %s", docs[0].ID, docs[1].ID)
	}

	// Processing the backlog empties the list.
	held.runAll()
	docs, err = svc.ListUnprocessed(context.Background())
	if err != nil {
		t.Fatalf("list after processing: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected empty backlog, got %d", len(docs))
	}
}
