package repository

import (
	"context"

	"credential-lifecycle/internal/audit/domain"
)

// Repository defines persistence for the access log. Entries are never updated or deleted.
type Repository interface {
	Create(ctx context.Context, e *domain.AccessLogEntry) error
	ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.AccessLogEntry, error)
}
