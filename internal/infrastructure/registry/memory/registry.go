package memory

import (
	"context"
	"fmt"
	"sync"

	"docshield/internal/core/domain"
)

// Registry is an in-memory document registry for tests and local runs.
type Registry struct {
	mu      sync.RWMutex
	records map[string]domain.DocumentRecord
}

func New() *Registry {
	return &Registry{records: make(map[string]domain.DocumentRecord)}
}

func (r *Registry) Get(_ context.Context, docID string) (*domain.DocumentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[docID]
	if !ok {
		return nil, domain.WrapError(domain.ErrRecordNotFound, "get record", fmt.Errorf("doc_id %s", docID))
	}
	copyRec := rec
	return &copyRec, nil
}

func (r *Registry) Put(_ context.Context, rec *domain.DocumentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[rec.DocID]; ok {
		return domain.WrapError(domain.ErrInvalidInput, "put record", fmt.Errorf("doc_id %s already issued", rec.DocID))
	}
	r.records[rec.DocID] = *rec
	return nil
}

func (r *Registry) ListAll(_ context.Context) ([]domain.DocumentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.DocumentRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	return out, nil
}
