package localfs

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestSaveAndOpen(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := storage.Save(context.Background(), "qr/doc-1.png", strings.NewReader("png-bytes")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reader, err := storage.Open(context.Background(), "qr/doc-1.png")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(raw) != "png-bytes" {
		t.Fatalf("unexpected content: %q", raw)
	}
}

func TestOpenMissingKey(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := storage.Open(context.Background(), "qr/missing.png"); err == nil {
		t.Fatalf("expected error for missing key")
	}
}

func TestSaveOverwritesExistingKey(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := storage.Save(context.Background(), "a.txt", strings.NewReader("first")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := storage.Save(context.Background(), "a.txt", strings.NewReader("second")); err != nil {
		t.Fatalf("Save overwrite: %v", err)
	}

	reader, err := storage.Open(context.Background(), "a.txt")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reader.Close()
	raw, _ := io.ReadAll(reader)
	if string(raw) != "second" {
		t.Fatalf("expected overwritten content, got %q", raw)
	}
}
