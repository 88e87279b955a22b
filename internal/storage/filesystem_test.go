package storage

import (
	"context"
	"errors"
	"testing"
)

func TestFileStore_WriteRead(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "/api/v1/files/")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	key, err := store.Write(ctx, "/ads/ad-1/../ad-1/preview.png", []byte("png"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if key != "ads/ad-1/preview.png" {
		t.Errorf("expected cleaned key, got %q", key)
	}

	data, err := store.Read(ctx, key)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "png" {
		t.Errorf("expected stored bytes, got %q", data)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Read(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Errorf("deleting missing object should succeed, got %v", err)
	}
}

func TestFileStore_RejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	for _, key := range []string{"", "  ", ".", "..", "../secret", "a/../../secret"} {
		if _, err := store.Write(context.Background(), key, []byte("x")); err == nil {
			t.Errorf("expected error for key %q", key)
		}
	}
}

func TestFileStore_CanceledContext(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Write(ctx, "a.png", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFileStore_URLRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "http://localhost:8085/api/v1/files")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	url := store.URL("versions/v1.png")
	if url != "http://localhost:8085/api/v1/files/versions/v1.png" {
		t.Errorf("unexpected url %q", url)
	}

	key, ok := store.KeyFromURL(url)
	if !ok || key != "versions/v1.png" {
		t.Errorf("KeyFromURL = %q, %v", key, ok)
	}

	if _, ok := store.KeyFromURL("https://cdn.example.com/v1.png"); ok {
		t.Error("foreign url must not resolve to a key")
	}
	if _, ok := store.KeyFromURL("http://localhost:8085/api/v1/files/../etc/passwd"); ok {
		t.Error("traversal url must not resolve to a key")
	}
}

func TestNewFileStore_RequiresPath(t *testing.T) {
	if _, err := NewFileStore("  ", ""); err == nil {
		t.Error("expected error for empty base path")
	}
}
