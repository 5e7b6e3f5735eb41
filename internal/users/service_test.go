package users

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterGeneratesID(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	user, err := svc.Register(context.Background(), User{Username: "alice"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected generated id")
	}
	if user.CreatedAt.IsZero() {
		t.Fatal("expected created timestamp")
	}

	got, err := svc.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("lookup mismatch: %q vs %q", got.ID, user.ID)
	}
}

func TestRegisterKeepsProvidedID(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	user, err := svc.Register(context.Background(), User{ID: "ext-1", Username: "bob"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID != "ext-1" {
		t.Fatalf("expected provided id to survive, got %q", user.ID)
	}
}

func TestRegisterRequiresUsername(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if _, err := svc.Register(context.Background(), User{}); err == nil {
		t.Fatal("expected error for missing username")
	}
}

func TestGetByIDUnknown(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if _, err := svc.GetByID(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}
