package local

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"docbase-backend/internal/shared/storage/object"
)

func TestSaveOpenDeleteRoundTrip(t *testing.T) {
	store := New(t.TempDir())

	body := "hello stored world"
	key, size, mimeType, err := store.Save(context.Background(), ".txt", strings.NewReader(body))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if size != int64(len(body)) {
		t.Fatalf("size = %d, want %d", size, len(body))
	}
	if !strings.HasPrefix(mimeType, "text/plain") {
		t.Fatalf("unexpected mime type: %q", mimeType)
	}
	if !strings.HasSuffix(key, ".txt") {
		t.Fatalf("key must carry the suggested extension: %q", key)
	}

	rc, err := store.Open(context.Background(), key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != body {
		t.Fatalf("round trip mismatch: %q", got)
	}

	if err := store.Delete(context.Background(), key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Open(context.Background(), key); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got: %v", err)
	}
}

func TestSaveGeneratesUniqueKeys(t *testing.T) {
	store := New(t.TempDir())

	k1, _, _, err := store.Save(context.Background(), ".txt", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	k2, _, _, err := store.Save(context.Background(), ".txt", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if k1 == k2 {
		t.Fatalf("identical payloads must get distinct keys: %q", k1)
	}
}

func TestSaveIgnoresUnsafeExtension(t *testing.T) {
	store := New(t.TempDir())

	key, _, _, err := store.Save(context.Background(), "../evil", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if strings.ContainsAny(key, "/\\") || strings.Contains(key, "..") {
		t.Fatalf("key must not carry path fragments: %q", key)
	}
}

func TestOpenRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())

	for _, key := range []string{"../secret", "a/b", "..", "/abs"} {
		if _, err := store.Open(context.Background(), key); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}

func TestDeleteMissingKey(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Delete(context.Background(), "nope.txt"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}
