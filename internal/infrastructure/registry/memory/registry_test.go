package memory

import (
	"context"
	"sync"
	"testing"

	"docshield/internal/core/domain"
)

func TestPutAndGet(t *testing.T) {
	registry := New()
	rec := &domain.DocumentRecord{DocID: "doc-1", HolderName: "Alice Smith"}

	if err := registry.Put(context.Background(), rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := registry.Get(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.HolderName != "Alice Smith" {
		t.Fatalf("unexpected record: %+v", got)
	}

	// The returned record is a copy; mutating it must not touch the store.
	got.HolderName = "mutated"
	again, err := registry.Get(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("Get again: %v", err)
	}
	if again.HolderName != "Alice Smith" {
		t.Fatalf("stored record was mutated through the returned copy")
	}
}

func TestGetUnknownIDIsNotFound(t *testing.T) {
	registry := New()
	if _, err := registry.Get(context.Background(), "ghost"); !domain.IsKind(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestPutDuplicateIsRejected(t *testing.T) {
	registry := New()
	rec := &domain.DocumentRecord{DocID: "doc-1"}

	if err := registry.Put(context.Background(), rec); err != nil {
		t.Fatalf("first Put: %v", err)
	}
	if err := registry.Put(context.Background(), rec); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for duplicate, got %v", err)
	}
}

func TestConcurrentAccess(t *testing.T) {
	registry := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			rec := &domain.DocumentRecord{DocID: string(rune('a' + n))}
			_ = registry.Put(context.Background(), rec)
			_, _ = registry.Get(context.Background(), rec.DocID)
		}(i)
	}
	wg.Wait()

	records, err := registry.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(records) != 20 {
		t.Fatalf("expected 20 records, got %d", len(records))
	}
}
