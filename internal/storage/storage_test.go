package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/storedesk/internal/config"
)

func TestLocalStoragePutAndDelete(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStorage(root, "/uploads/")
	ctx := context.Background()

	url, err := store.Put(ctx, "product/2026/01/a.png", strings.NewReader("data"), 4, "image/png")
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if url != "/uploads/product/2026/01/a.png" {
		t.Fatalf("unexpected url: %s", url)
	}
	content, err := os.ReadFile(filepath.Join(root, "product", "2026", "01", "a.png"))
	if err != nil || string(content) != "data" {
		t.Fatalf("unexpected file content: %q %v", content, err)
	}

	if err := store.Delete(ctx, url); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "product", "2026", "01", "a.png")); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, got %v", err)
	}
	if err := store.Delete(ctx, url); err != nil {
		t.Fatalf("deleting missing file should succeed: %v", err)
	}
}

func TestLocalStorageRejectsForeignAndTraversal(t *testing.T) {
	store := NewLocalStorage(t.TempDir(), "")
	ctx := context.Background()

	if err := store.Delete(ctx, "https://cdn.example.com/a.png"); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("expected not owned, got %v", err)
	}
	url, err := store.Put(ctx, "../../etc/passwd", strings.NewReader("x"), 1, "text/plain")
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if url != "/uploads/etc/passwd" {
		t.Fatalf("key must be confined to root, got %s", url)
	}
	if _, err := store.Put(ctx, "  ", strings.NewReader("x"), 1, "text/plain"); err == nil {
		t.Fatalf("expected empty key error")
	}
}

func TestNewSelectsDriver(t *testing.T) {
	store, err := New(context.Background(), config.StorageConfig{Driver: "local", LocalDir: t.TempDir()})
	if err != nil {
		t.Fatalf("new local failed: %v", err)
	}
	if _, ok := store.(*LocalStorage); !ok {
		t.Fatalf("expected local storage, got %T", store)
	}
	if _, err := New(context.Background(), config.StorageConfig{Driver: "ftp"}); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
	if _, err := New(context.Background(), config.StorageConfig{Driver: "s3"}); err == nil {
		t.Fatalf("expected missing bucket error")
	}
}

func TestS3StorageOwnership(t *testing.T) {
	store, err := NewS3Storage(context.Background(), config.S3StorageConfig{
		Endpoint:        "http://127.0.0.1:9000",
		Bucket:          "media",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		PublicURL:       "https://cdn.example.com/",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("new s3 storage failed: %v", err)
	}
	if !store.Owns("https://cdn.example.com/product/a.png") {
		t.Fatalf("expected ownership of cdn url")
	}
	if store.Owns("/uploads/product/a.png") {
		t.Fatalf("local url must not be owned by s3 storage")
	}
	if err := store.Delete(context.Background(), "/uploads/a.png"); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("expected not owned, got %v", err)
	}
}
