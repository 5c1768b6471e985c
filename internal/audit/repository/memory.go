package repository

import (
	"context"
	"sync"

	"credential-lifecycle/internal/audit/domain"
)

// MemoryRepository is an in-memory Repository. Err, when set, is returned by Create.
type MemoryRepository struct {
	mu      sync.Mutex
	entries []domain.AccessLogEntry
	Err     error
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Create(ctx context.Context, e *domain.AccessLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.entries = append(r.entries, *e)
	return nil
}

func (r *MemoryRepository) ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.AccessLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AccessLogEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].UserID != userID {
			continue
		}
		if offset > 0 {
			offset--
			continue
		}
		if limit > 0 && int32(len(out)) >= limit {
			break
		}
		e := r.entries[i]
		out = append(out, &e)
	}
	return out, nil
}

// All returns every entry in insertion order.
func (r *MemoryRepository) All() []domain.AccessLogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AccessLogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}
